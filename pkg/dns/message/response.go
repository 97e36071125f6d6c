package message

import (
	"fmt"

	"github.com/vadim-su/homedns/pkg/dns/types"
	"github.com/vadim-su/homedns/pkg/dns/utils"
)

// DNSResponse represents a full DNS response message: header, the echoed
// question section, and answer/authority/additional resource records.
type DNSResponse struct {
	Header            DNSHeader
	Questions         []DNSQuestion
	Answers           []DNSAnswer
	AuthorityRecords  []DNSAnswer
	AdditionalRecords []DNSAnswer
}

// NewDNSResponse parses a full DNS response out of raw wire bytes.
func NewDNSResponse(data []byte) (*DNSResponse, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("invalid DNS response: data too short (%d bytes)", len(data))
	}

	originalMessage := data
	header := DNSHeader{
		ID:                    uint16(data[0])<<8 | uint16(data[1]),
		Flags:                 types.DNSFlag(uint16(data[2])<<8 | uint16(data[3])),
		QuestionCount:         uint16(data[4])<<8 | uint16(data[5]),
		AnswerRecordCount:     uint16(data[6])<<8 | uint16(data[7]),
		AuthorityRecordCount:  uint16(data[8])<<8 | uint16(data[9]),
		AdditionalRecordCount: uint16(data[10])<<8 | uint16(data[11]),
	}

	remaining := data[12:]

	questions, size, err := NewDNSQuestions(remaining, header.QuestionCount, originalMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to parse questions section: %w", err)
	}
	remaining = advanceDataPointer(remaining, size)

	answers, size, err := NewDNSAnswers(remaining, header.AnswerRecordCount, originalMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to parse answers section: %w", err)
	}
	remaining = advanceDataPointer(remaining, size)

	authority, size, err := NewDNSAnswers(remaining, header.AuthorityRecordCount, originalMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authority section: %w", err)
	}
	remaining = advanceDataPointer(remaining, size)

	additional, _, err := NewDNSAnswers(remaining, header.AdditionalRecordCount, originalMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to parse additional section: %w", err)
	}

	return &DNSResponse{
		Header:            header,
		Questions:         questions,
		Answers:           answers,
		AuthorityRecords:  authority,
		AdditionalRecords: additional,
	}, nil
}

// GenerateDNSResponse builds a response sharing the request's transaction ID
// and carrying the given questions/answers/authority/additional sections.
// Callers set AA/RA/RCODE on the returned Header afterward; the QR bit and
// OPCODE echo are set here since they never vary per query outcome.
func GenerateDNSResponse(
	id uint16,
	reqFlags types.DNSFlag,
	questions []DNSQuestion,
	answers []DNSAnswer,
) *DNSResponse {
	flags := PrepareResponseFlags(reqFlags)
	return &DNSResponse{
		Header: DNSHeader{
			ID:                    id,
			Flags:                 flags,
			QuestionCount:         uint16(len(questions)),
			AnswerRecordCount:     uint16(len(answers)),
			AuthorityRecordCount:  0,
			AdditionalRecordCount: 0,
		},
		Questions: questions,
		Answers:   answers,
	}
}

// GenerateDNSResponseWithSections builds a response carrying authority and
// additional sections in addition to answers, as the authoritative resolver
// pipeline requires for SOA/NS synthesis.
func GenerateDNSResponseWithSections(
	id uint16,
	reqFlags types.DNSFlag,
	questions []DNSQuestion,
	answers, authority, additional []DNSAnswer,
) *DNSResponse {
	flags := PrepareResponseFlags(reqFlags)
	return &DNSResponse{
		Header: DNSHeader{
			ID:                    id,
			Flags:                 flags,
			QuestionCount:         uint16(len(questions)),
			AnswerRecordCount:     uint16(len(answers)),
			AuthorityRecordCount:  uint16(len(authority)),
			AdditionalRecordCount: uint16(len(additional)),
		},
		Questions:         questions,
		Answers:           answers,
		AuthorityRecords:  authority,
		AdditionalRecords: additional,
	}
}

// GenerateDNSQuery builds an outbound query message (used by the forwarder).
func GenerateDNSQuery(id uint16, questions []DNSQuestion) *DNSResponse {
	flags := types.FLAG_QR_QUERY | types.FLAG_OPCODE_STANDARD | types.FLAG_RD_RECURSION_DESIRED
	return &DNSResponse{
		Header: DNSHeader{
			ID:            id,
			Flags:         flags,
			QuestionCount: uint16(len(questions)),
		},
		Questions: questions,
	}
}

// PrepareResponseFlags derives response flags from the request's flags:
// sets QR=response and defaults RCODE based on OPCODE support.
func PrepareResponseFlags(reqFlags types.DNSFlag) types.DNSFlag {
	respFlags := reqFlags | types.FLAG_QR_RESPONSE

	if ((reqFlags >> types.BIT_OPCODE_START) & 0xF) == 0 {
		respFlags |= types.DNSFlag(types.RCODE_NO_ERROR)
	} else {
		respFlags |= types.DNSFlag(types.RCODE_NOT_IMPLEMENTED)
	}

	return respFlags
}

// SetRCode clears the low 4 RCODE bits and sets the given response code.
func (d *DNSResponse) SetRCode(rcode types.DNSRCode) {
	d.Header.Flags = (d.Header.Flags &^ 0xF) | types.DNSFlag(rcode)
}

// ToBytes converts the DNSResponse to its uncompressed wire representation.
func (d *DNSResponse) ToBytes() []byte {
	result := d.Header.ToBytes()

	for _, question := range d.Questions {
		result = append(result, question.ToBytes()...)
	}
	for _, answer := range d.Answers {
		result = append(result, answer.ToBytes()...)
	}
	for _, authority := range d.AuthorityRecords {
		result = append(result, authority.ToBytes()...)
	}
	for _, additional := range d.AdditionalRecords {
		result = append(result, additional.ToBytes()...)
	}

	return result
}

// ToBytesWithCompression converts the DNSResponse to bytes using DNS name
// compression across all sections.
func (d *DNSResponse) ToBytesWithCompression() []byte {
	compressionMap := utils.NewCompressionMap()
	result := d.Header.ToBytes()
	currentOffset := uint16(12)

	for _, question := range d.Questions {
		questionBytes := question.ToBytesWithCompression(compressionMap, currentOffset)
		result = append(result, questionBytes...)
		currentOffset += uint16(len(questionBytes))
	}
	for _, answer := range d.Answers {
		answerBytes := answer.ToBytesWithCompression(compressionMap, currentOffset)
		result = append(result, answerBytes...)
		currentOffset += uint16(len(answerBytes))
	}
	for _, authority := range d.AuthorityRecords {
		authorityBytes := authority.ToBytesWithCompression(compressionMap, currentOffset)
		result = append(result, authorityBytes...)
		currentOffset += uint16(len(authorityBytes))
	}
	for _, additional := range d.AdditionalRecords {
		additionalBytes := additional.ToBytesWithCompression(compressionMap, currentOffset)
		result = append(result, additionalBytes...)
		currentOffset += uint16(len(additionalBytes))
	}

	return result
}

// String returns a human-readable summary of the response.
func (d *DNSResponse) String() string {
	return fmt.Sprintf(
		"DNSResponse{ID: %d, Questions: %d, Answers: %d, Authority: %d, Additional: %d}",
		d.Header.ID, len(d.Questions), len(d.Answers), len(d.AuthorityRecords), len(d.AdditionalRecords),
	)
}
