package message

import (
	"fmt"

	"github.com/vadim-su/homedns/pkg/dns/types"
	"github.com/vadim-su/homedns/pkg/dns/utils"
)

// DNSAnswer represents a single resource record, shared by the answer,
// authority, and additional sections of a DNS message.
type DNSAnswer struct {
	Name  utils.DomainName
	Class [2]byte
	Type  [2]byte
	TTL   [4]byte
	Data  []byte // RDATA
}

// NewDNSAnswer builds a DNSAnswer from an owner name and RDATA.
func NewDNSAnswer(name []byte, class types.DNSClass, recordType types.DNSType, ttl uint32, data []byte) (*DNSAnswer, error) {
	dnsName, _, err := utils.NewDomainName(name)
	if err != nil {
		return nil, fmt.Errorf("can't create DNS answer: %w", err)
	}

	return &DNSAnswer{
		Name:  *dnsName,
		Class: typeClassToBytes(class),
		Type:  typeClassToBytes(recordType),
		TTL:   [4]byte{byte(ttl >> 24), byte(ttl >> 16), byte(ttl >> 8), byte(ttl)},
		Data:  data,
	}, nil
}

// NewDNSAnswers parses `count` consecutive resource records out of `data`,
// following message-compression pointers against `originalMessage`.
func NewDNSAnswers(data []byte, count uint16, originalMessage []byte) ([]DNSAnswer, uint16, error) {
	resultAnswers := make([]DNSAnswer, 0, count)
	answersDataSize := uint16(0)

	for range count {
		dnsName, domainDataSize, err := utils.NewDomainNameWithDecompression(data, originalMessage)
		if err != nil {
			return nil, 0, fmt.Errorf("can't parse DNS record: %w", err)
		}
		answersDataSize += domainDataSize
		data = data[domainDataSize:]

		if len(data) < 10 {
			return nil, 0, fmt.Errorf("not enough bytes for record header")
		}

		class := [2]byte{data[0], data[1]}
		type_ := [2]byte{data[2], data[3]}
		ttl := [4]byte{data[4], data[5], data[6], data[7]}

		dataLength := uint16(data[8])<<8 | uint16(data[9])
		if len(data) < int(10+dataLength) {
			return nil, 0, fmt.Errorf("not enough bytes for record RDATA")
		}
		answersDataSize += 10 + dataLength

		rdata := data[10 : 10+dataLength]
		data = data[10+dataLength:]

		resultAnswers = append(resultAnswers, DNSAnswer{
			Name:  *dnsName,
			Class: class,
			Type:  type_,
			TTL:   ttl,
			Data:  rdata,
		})
	}

	return resultAnswers, answersDataSize, nil
}

// ToBytes converts the DNSAnswer to its uncompressed wire representation.
func (d *DNSAnswer) ToBytes() []byte {
	result := d.Name.ToBytes()
	dataLength := []byte{byte(len(d.Data) >> 8), byte(len(d.Data) & 0xFF)}

	result = append(result, d.Class[:]...)
	result = append(result, d.Type[:]...)
	result = append(result, d.TTL[:]...)
	result = append(result, dataLength...)
	result = append(result, d.Data...)

	return result
}

// ToBytesWithCompression converts the DNSAnswer to bytes, compressing the
// owner name against names already written earlier in the message.
func (d *DNSAnswer) ToBytesWithCompression(compressionMap *utils.CompressionMap, currentOffset uint16) []byte {
	nameBytes := d.Name.ToBytesWithCompression(compressionMap, currentOffset)
	dataLength := []byte{byte(len(d.Data) >> 8), byte(len(d.Data) & 0xFF)}

	result := append(nameBytes, d.Class[:]...)
	result = append(result, d.Type[:]...)
	result = append(result, d.TTL[:]...)
	result = append(result, dataLength...)
	result = append(result, d.Data...)

	return result
}

// RecordType returns the resource record's DNS type.
func (d *DNSAnswer) RecordType() types.DNSType {
	return types.DNSType(uint16(d.Type[0])<<8 | uint16(d.Type[1]))
}

// RecordClass returns the resource record's DNS class.
func (d *DNSAnswer) RecordClass() types.DNSClass {
	return types.DNSClass(uint16(d.Class[0])<<8 | uint16(d.Class[1]))
}

// RecordTTL returns the resource record's TTL in seconds.
func (d *DNSAnswer) RecordTTL() uint32 {
	return uint32(d.TTL[0])<<24 | uint32(d.TTL[1])<<16 | uint32(d.TTL[2])<<8 | uint32(d.TTL[3])
}

func typeClassToBytes[T ~uint16](value T) [2]byte {
	return [2]byte{byte(value >> 8), byte(value & 0xFF)}
}
