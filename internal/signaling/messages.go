package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/auth"
)

// Kind enumerates the signal message variants the relay understands.
// Anything else parses as KindUnknown and is dropped without closing the
// connection.
type Kind int

const (
	KindUnknown Kind = iota
	KindOffer
	KindAnswer
	KindICE
)

func (k Kind) String() string {
	switch k {
	case KindOffer:
		return "offer"
	case KindAnswer:
		return "answer"
	case KindICE:
		return "ice"
	default:
		return "unknown"
	}
}

// Inbound is a parsed client signal. The payload is opaque: SDP and ICE
// blobs pass through the relay untouched.
type Inbound struct {
	Kind    Kind
	Payload json.RawMessage
}

type wireSignal struct {
	Type      string          `json:"type"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

// ParseInbound decodes a client frame. Unknown types yield KindUnknown with
// a nil error; structurally invalid frames yield an error. Both are dropped
// by the caller.
func ParseInbound(data []byte) (Inbound, error) {
	var wire wireSignal
	if err := json.Unmarshal(data, &wire); err != nil {
		return Inbound{}, fmt.Errorf("decode signal: %w", err)
	}

	switch wire.Type {
	case "offer":
		if len(wire.Offer) == 0 {
			return Inbound{}, fmt.Errorf("offer signal missing offer payload")
		}
		return Inbound{Kind: KindOffer, Payload: wire.Offer}, nil
	case "answer":
		if len(wire.Answer) == 0 {
			return Inbound{}, fmt.Errorf("answer signal missing answer payload")
		}
		return Inbound{Kind: KindAnswer, Payload: wire.Answer}, nil
	case "ice", "candidate":
		if len(wire.Candidate) == 0 {
			return Inbound{}, fmt.Errorf("%s signal missing candidate payload", wire.Type)
		}
		return Inbound{Kind: KindICE, Payload: wire.Candidate}, nil
	default:
		return Inbound{Kind: KindUnknown}, nil
	}
}

// AllowedFor is the relay authorization table: offers originate from
// doctors, answers from patients, ICE candidates from anyone.
func (in Inbound) AllowedFor(role auth.Role) bool {
	switch in.Kind {
	case KindOffer:
		return role == auth.RoleDoctor
	case KindAnswer:
		return role == auth.RolePatient
	case KindICE:
		return true
	default:
		return false
	}
}

// Envelope renders the normalized broadcast frame for this signal. ICE
// candidates always go out as type "ice" regardless of the inbound alias.
func (in Inbound) Envelope() ([]byte, error) {
	switch in.Kind {
	case KindOffer:
		return json.Marshal(struct {
			Type  string          `json:"type"`
			Offer json.RawMessage `json:"offer"`
		}{"offer", in.Payload})
	case KindAnswer:
		return json.Marshal(struct {
			Type   string          `json:"type"`
			Answer json.RawMessage `json:"answer"`
		}{"answer", in.Payload})
	case KindICE:
		return json.Marshal(struct {
			Type      string          `json:"type"`
			Candidate json.RawMessage `json:"candidate"`
		}{"ice", in.Payload})
	default:
		return nil, fmt.Errorf("no envelope for %s signal", in.Kind)
	}
}

func readyMessage(role auth.Role) []byte {
	data, _ := json.Marshal(struct {
		Type string `json:"type"`
		Role string `json:"role"`
	}{"ready", string(role)})
	return data
}

func patientJoinedMessage(id uuid.UUID, name string) []byte {
	data, _ := json.Marshal(struct {
		Type        string `json:"type"`
		PatientID   string `json:"patient_id"`
		PatientName string `json:"patient_name"`
	}{"patient-joined", id.String(), name})
	return data
}
