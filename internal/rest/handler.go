// Package rest implements the authenticated HTTP control plane: the
// create/read/update/upsert/delete surface over A, AAAA, CNAME, MX, and
// NS records, backed directly by the same store the DNS resolver
// chain reads from.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/vadim-su/homedns/internal/auth"
	"github.com/vadim-su/homedns/internal/config"
	"github.com/vadim-su/homedns/internal/store"
	"github.com/vadim-su/homedns/pkg/dns/records"
	"github.com/vadim-su/homedns/pkg/dns/types"
)

// Handler serves the REST control plane.
type Handler struct {
	store         store.Store
	authenticator *auth.Authenticator
	noAuth        bool
	soaDomains    []string
	defaultTTL    uint32

	mu       sync.Mutex
	modified map[string]time.Time
}

// NewHandler builds a Handler. authenticator may be nil only if noAuth
// is true.
func NewHandler(s store.Store, authenticator *auth.Authenticator, cfg *config.Config) *Handler {
	return &Handler{
		store:         s,
		authenticator: authenticator,
		noAuth:        cfg.ActiveAuthMode() == config.AuthModeNone,
		soaDomains:    cfg.DNS.SOADomains,
		defaultTTL:    cfg.DNS.TTL,
		modified:      make(map[string]time.Time),
	}
}

// Router builds the gorilla/mux route table described by the REST
// endpoint surface: /ip4, plus the {hostname,create,update,upsert}
// matrix over a, aaaa, cname, mx, and ns, and hostname/delete for all five.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ip4", h.withAuth(h.handleIP4)).Methods(http.MethodGet)

	for _, kind := range []string{"a", "aaaa", "cname", "mx", "ns"} {
		kind := kind
		r.HandleFunc(fmt.Sprintf("/hostname/%s/{name}", kind), h.withAuth(h.handleGet(kind))).Methods(http.MethodGet)
		r.HandleFunc(fmt.Sprintf("/create/%s/{name}", kind), h.withAuth(h.handleWrite(kind, writeCreate))).Methods(http.MethodPost)
		r.HandleFunc(fmt.Sprintf("/update/%s/{name}", kind), h.withAuth(h.handleWrite(kind, writeUpdate))).Methods(http.MethodPut)
		r.HandleFunc(fmt.Sprintf("/upsert/%s/{name}", kind), h.withAuth(h.handleWrite(kind, writeUpsert))).Methods(http.MethodPut)
		r.HandleFunc(fmt.Sprintf("/hostname/%s/{name}", kind), h.withAuth(h.handleDelete(kind))).Methods(http.MethodDelete)
	}

	return r
}

// withAuth wraps next to require a valid Bearer token unless no_auth is
// enabled, per spec §4.7.
func (h *Handler) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.noAuth {
			if _, err := h.authenticator.Authenticate(r); err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
		}
		next(w, r)
	}
}

func (h *Handler) handleIP4(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": host})
}

// isSOADomain reports whether name's suffix matches a configured SOA
// domain, required by every mutating endpoint per spec §4.7.
func (h *Handler) isSOADomain(name string) bool {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	for _, domain := range h.soaDomains {
		domain = strings.ToLower(strings.TrimSuffix(domain, "."))
		if name == domain || strings.HasSuffix(name, "."+domain) {
			return true
		}
	}
	return false
}

func (h *Handler) markModified(name string, kind types.DNSType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modified[modifiedKey(name, kind)] = time.Now().UTC()
}

func (h *Handler) lastModified(name string, kind types.DNSType) time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modified[modifiedKey(name, kind)]
}

func modifiedKey(name string, kind types.DNSType) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSuffix(name, ".")), kind)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Code   int    `json:"code"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorBody{Code: status, Error: message, Detail: detail})
}

// kindType maps the REST path segment to the DNS record type it
// manages.
func kindType(kind string) (types.DNSType, bool) {
	switch kind {
	case "a":
		return types.TYPE_A, true
	case "aaaa":
		return types.TYPE_AAAA, true
	case "cname":
		return types.TYPE_CNAME, true
	case "mx":
		return types.TYPE_MX, true
	case "ns":
		return types.TYPE_NS, true
	default:
		return 0, false
	}
}

func (h *Handler) handleGet(kind string) http.HandlerFunc {
	qtype, ok := kindType(kind)
	if !ok {
		return notFoundHandler
	}

	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		recs, err := h.store.NameSearch(r.Context(), name, qtype)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "storage unavailable", err.Error())
			return
		}

		rows := make([]map[string]interface{}, 0, len(recs))
		for _, rec := range recs {
			if rec.Type() != qtype {
				continue
			}
			rows = append(rows, recordToJSON(kind, rec, h.lastModified(rec.Name(), qtype)))
		}

		writeJSON(w, http.StatusOK, rows)
	}
}

func recordToJSON(kind string, rec records.DNSRecord, modified time.Time) map[string]interface{} {
	row := map[string]interface{}{"hostname": rec.Name()}
	if !modified.IsZero() {
		row["modified"] = modified.Format(time.RFC3339)
	}

	switch r := rec.(type) {
	case *records.ARecord:
		row["address"] = r.IP().String()
	case *records.AAAARecord:
		row["address"] = r.IP().String()
	case *records.CNAMERecord:
		row["alias"] = r.Target()
	case *records.MXRecord:
		row["target"] = r.MailServer()
		row["priority"] = r.Preference()
	case *records.NSRecord:
		row["target"] = r.NameServer()
	}
	return row
}

type writeMode int

const (
	writeCreate writeMode = iota
	writeUpdate
	writeUpsert
)

type recordBody struct {
	Address  string `json:"address"`
	Alias    string `json:"alias"`
	Target   string `json:"target"`
	Priority uint16 `json:"priority"`
	TTL      uint32 `json:"ttl"`
}

func (h *Handler) handleWrite(kind string, mode writeMode) http.HandlerFunc {
	qtype, ok := kindType(kind)
	if !ok {
		return notFoundHandler
	}

	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		if !h.isSOADomain(name) {
			writeError(w, http.StatusBadRequest, "Not a SOA domain", "")
			return
		}

		var body recordBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "bad json", err.Error())
			return
		}
		if body.TTL == 0 {
			body.TTL = h.defaultTTL
		}

		record, err := buildRecord(kind, name, body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid value", err.Error())
			return
		}

		status, updated, err := h.writeRecord(r, record, mode)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				writeError(w, http.StatusNotFound, "record not found", "")
				return
			}
			writeError(w, http.StatusInternalServerError, "storage unavailable", err.Error())
			return
		}

		h.markModified(name, qtype)
		writeJSON(w, status, map[string]bool{"success": true, "updated": updated})
	}
}

// writeRecord applies mode's create/update/upsert semantics and returns
// the HTTP status to respond with plus whether an existing row was
// updated (as opposed to a new one created).
func (h *Handler) writeRecord(r *http.Request, record records.DNSRecord, mode writeMode) (int, bool, error) {
	switch mode {
	case writeCreate:
		if err := h.store.CreateRecord(r.Context(), record); err != nil {
			return 0, false, err
		}
		return http.StatusCreated, false, nil

	case writeUpdate:
		if err := h.store.UpdateRecord(r.Context(), record); err != nil {
			return 0, false, err
		}
		return http.StatusOK, true, nil

	case writeUpsert:
		err := h.store.UpdateRecord(r.Context(), record)
		if err == nil {
			return http.StatusOK, true, nil
		}
		if !errors.Is(err, store.ErrRecordNotFound) {
			return 0, false, err
		}
		if err := h.store.CreateRecord(r.Context(), record); err != nil {
			return 0, false, err
		}
		return http.StatusCreated, false, nil

	default:
		return 0, false, fmt.Errorf("unknown write mode")
	}
}

func buildRecord(kind, name string, body recordBody) (records.DNSRecord, error) {
	switch kind {
	case "a":
		return records.NewARecordFromString(name, body.Address, body.TTL)
	case "aaaa":
		return records.NewAAAARecordFromString(name, body.Address, body.TTL)
	case "cname":
		if body.Alias == "" {
			return nil, fmt.Errorf("alias is required")
		}
		return records.NewCNAMERecord(name, body.Alias, body.TTL), nil
	case "mx":
		if body.Target == "" {
			return nil, fmt.Errorf("target is required")
		}
		return records.NewMXRecord(name, body.Target, body.Priority, body.TTL), nil
	case "ns":
		if body.Target == "" {
			return nil, fmt.Errorf("target is required")
		}
		return records.NewNSRecord(name, body.Target, body.TTL), nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

func (h *Handler) handleDelete(kind string) http.HandlerFunc {
	qtype, ok := kindType(kind)
	if !ok {
		return notFoundHandler
	}

	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		if !h.isSOADomain(name) {
			writeError(w, http.StatusBadRequest, "Not a SOA domain", "")
			return
		}

		err := h.store.DeleteRecordByHostname(r.Context(), name, qtype)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]interface{}{"deleted": 0, "success": false})
				return
			}
			writeError(w, http.StatusInternalServerError, "storage unavailable", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1, "success": true})
	}
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found", "")
}
