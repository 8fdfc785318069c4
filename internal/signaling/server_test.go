package signaling

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/auth"
	"github.com/telecare/telecare/internal/metrics"
)

type testHarness struct {
	ts       *httptest.Server
	issuer   *auth.TokenIssuer
	registry *MemoryRegistry
	metrics  *metrics.Metrics
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	issuer := auth.NewTokenIssuer("signaling-test-secret", time.Hour, time.Hour)
	registry := NewMemoryRegistry()
	m := metrics.New()

	srv := NewServer(Config{
		Registry:        registry,
		Identities:      issuer,
		Metrics:         m,
		Logger:          zerolog.Nop(),
		MaxMessageBytes: 64 * 1024,
	})

	e := echo.New()
	e.GET("/ws/video/:room", srv.HandleVideo)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)

	return &testHarness{ts: ts, issuer: issuer, registry: registry, metrics: m}
}

func (h *testHarness) token(t *testing.T, role auth.Role, name string) string {
	t.Helper()
	pair, err := h.issuer.Issue(auth.Identity{ID: uuid.New(), Name: name, Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return pair.AccessToken
}

func (h *testHarness) dial(t *testing.T, room, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws/video/" + room
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", room, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForMembers blocks until the room group reaches the wanted size, so
// tests can order joins deterministically.
func (h *testHarness) waitForMembers(t *testing.T, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.registry.Size(GroupName(room)) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d members (have %d)", room, want, h.registry.Size(GroupName(room)))
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame map[string]json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode frame %s: %v", data, err)
	}
	return frame
}

func frameType(t *testing.T, frame map[string]json.RawMessage) string {
	t.Helper()
	var typ string
	if err := json.Unmarshal(frame["type"], &typ); err != nil {
		t.Fatalf("frame missing type: %v", err)
	}
	return typ
}

// expectSilence asserts no frame arrives within a short window. The read
// deadline error is terminal for the connection, so call it last.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, data, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no frame, got %s", data)
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		t.Fatalf("expected timeout, got close %d", closeErr.Code)
	}
}

func TestAnonymousConnectionRejected(t *testing.T) {
	h := newHarness(t)

	conn := h.dial(t, "r1", "")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("expected close error, got %v", err)
	}
	if closeErr.Code != CloseUnauthenticated {
		t.Fatalf("close code = %d, want %d", closeErr.Code, CloseUnauthenticated)
	}
	if h.registry.Size(GroupName("r1")) != 0 {
		t.Fatal("anonymous connection must never join the room")
	}
	if h.metrics.Get(metrics.SignalRejectAnonymous) != 1 {
		t.Error("expected reject counter to increment")
	}
}

func TestGarbageTokenTreatedAsAnonymous(t *testing.T) {
	h := newHarness(t)

	conn := h.dial(t, "r1", "bogus-token")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Code != CloseUnauthenticated {
		t.Fatalf("expected close %d, got %v", CloseUnauthenticated, err)
	}
}

func TestInvalidRoomNameRejected(t *testing.T) {
	h := newHarness(t)
	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws/video/bad-room!?token=x"
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("expected handshake failure for invalid room name")
	}
}

func TestReadyBroadcastOnJoin(t *testing.T) {
	h := newHarness(t)

	d1 := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	d2 := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. B"))
	h.waitForMembers(t, "r1", 2)

	// d1 sees d2's ready; d2 sees nothing of its own join.
	frame := readFrame(t, d1)
	if frameType(t, frame) != "ready" {
		t.Fatalf("expected ready, got %s", frameType(t, frame))
	}
	var role string
	_ = json.Unmarshal(frame["role"], &role)
	if role != "doctor" {
		t.Errorf("ready role = %q, want doctor", role)
	}

	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "Amina Yusuf"))
	h.waitForMembers(t, "r1", 3)

	// Both doctors receive exactly one ready and one patient-joined.
	for _, conn := range []*websocket.Conn{d1, d2} {
		ready := readFrame(t, conn)
		if frameType(t, ready) != "ready" {
			t.Fatalf("expected ready, got %s", frameType(t, ready))
		}
		joined := readFrame(t, conn)
		if frameType(t, joined) != "patient-joined" {
			t.Fatalf("expected patient-joined, got %s", frameType(t, joined))
		}
		var name string
		_ = json.Unmarshal(joined["patient_name"], &name)
		if name != "Amina Yusuf" {
			t.Errorf("patient_name = %q", name)
		}
		var id string
		_ = json.Unmarshal(joined["patient_id"], &id)
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("patient_id %q is not a uuid: %v", id, err)
		}
	}

	// The joiner receives none of its own announcements.
	expectSilence(t, patient)
}

func TestOfferFromPatientNotRelayed(t *testing.T) {
	h := newHarness(t)

	doctor := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "P"))
	h.waitForMembers(t, "r1", 2)

	// Drain the join announcements on the doctor side.
	readFrame(t, doctor) // ready
	readFrame(t, doctor) // patient-joined

	if err := patient.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"offer","offer":"sdp-X"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	expectSilence(t, doctor)
}

func TestAnswerFromDoctorNotRelayed(t *testing.T) {
	h := newHarness(t)

	doctor := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "P"))
	h.waitForMembers(t, "r1", 2)

	if err := doctor.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"answer","answer":"sdp-X"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	expectSilence(t, patient)
}

func TestICERelayNormalized(t *testing.T) {
	h := newHarness(t)

	doctor := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "P"))
	h.waitForMembers(t, "r1", 2)

	readFrame(t, doctor) // ready
	readFrame(t, doctor) // patient-joined

	// The legacy "candidate" alias must come out as type "ice".
	if err := patient.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"candidate","candidate":{"candidate":"c1"}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, doctor)
	if frameType(t, frame) != "ice" {
		t.Fatalf("expected ice, got %s", frameType(t, frame))
	}
	if string(frame["candidate"]) != `{"candidate":"c1"}` {
		t.Errorf("candidate payload altered: %s", frame["candidate"])
	}

	// The sender receives no echo of its own candidate.
	expectSilence(t, patient)
}

func TestDisconnectRemovesMembership(t *testing.T) {
	h := newHarness(t)

	doctor := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "P"))
	h.waitForMembers(t, "r1", 2)

	patient.Close()
	h.waitForMembers(t, "r1", 1)

	// Later broadcasts must not block or error on the departed member.
	if err := doctor.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"offer","offer":"sdp-late"}`)); err != nil {
		t.Fatalf("write after peer departure: %v", err)
	}
}

func TestDoctorPatientOfferAnswerScenario(t *testing.T) {
	h := newHarness(t)

	doctor := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "P"))
	h.waitForMembers(t, "r1", 2)

	readFrame(t, doctor) // ready
	readFrame(t, doctor) // patient-joined

	if err := doctor.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"offer","offer":"sdp-A"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, patient)
	if frameType(t, frame) != "offer" || string(frame["offer"]) != `"sdp-A"` {
		t.Fatalf("patient got %v", frame)
	}

	if err := patient.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"answer","answer":"sdp-B"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The doctor's next frame is the answer. If the doctor's own offer had
	// been echoed back, it would arrive first and fail this assertion.
	frame = readFrame(t, doctor)
	if frameType(t, frame) != "answer" || string(frame["answer"]) != `"sdp-B"` {
		t.Fatalf("doctor got %v", frame)
	}

	// Role-mismatched offer from the patient reaches no one.
	if err := patient.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"offer","offer":"sdp-C"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	expectSilence(t, doctor)
}

func TestThirdParticipantSeesNoHistory(t *testing.T) {
	h := newHarness(t)

	doctor := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "P"))
	h.waitForMembers(t, "r1", 2)

	readFrame(t, doctor) // ready
	readFrame(t, doctor) // patient-joined

	third := h.dial(t, "r1", h.token(t, auth.RoleUnspecified, "Observer"))
	h.waitForMembers(t, "r1", 3)

	// Doctor and patient each receive exactly one more ready broadcast.
	frame := readFrame(t, doctor)
	if frameType(t, frame) != "ready" {
		t.Fatalf("doctor expected ready, got %s", frameType(t, frame))
	}
	frame = readFrame(t, patient)
	if frameType(t, frame) != "ready" {
		t.Fatalf("patient expected ready, got %s", frameType(t, frame))
	}

	// The newcomer receives none of the earlier announcements.
	expectSilence(t, third)
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	h := newHarness(t)

	doctor := h.dial(t, "r1", h.token(t, auth.RoleDoctor, "Dr. A"))
	h.waitForMembers(t, "r1", 1)
	patient := h.dial(t, "r1", h.token(t, auth.RolePatient, "P"))
	h.waitForMembers(t, "r1", 2)

	// Garbage, unknown type, then a valid offer on the same connection.
	for _, raw := range []string{"not json", `{"type":"chat","text":"hi"}`} {
		if err := doctor.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := doctor.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"offer","offer":"still-alive"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, patient)
	if frameType(t, frame) != "offer" || string(frame["offer"]) != `"still-alive"` {
		t.Fatalf("patient got %v", frame)
	}
}
