package signaling

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/auth"
	"github.com/telecare/telecare/internal/metrics"
	"github.com/telecare/telecare/internal/ratelimit"
)

// CloseUnauthenticated is the application close code sent to connections
// that present no valid identity. Clients distinguish it from transport
// failures and prompt for a fresh login instead of retrying.
const CloseUnauthenticated = 4001

const writeWait = 1 * time.Second

var roomNamePattern = regexp.MustCompile(`^\w+$`)

// GroupName maps a room name from the URL to its broadcast group.
func GroupName(room string) string { return "video_" + room }

// IdentityResolver turns the ?token= query credential into an identity.
// Absent or invalid credentials resolve to the anonymous identity.
type IdentityResolver interface {
	IdentityFromQueryToken(token string) auth.Identity
}

// Config wires the runtime dependencies of the signaling server.
type Config struct {
	Registry   Registry
	Identities IdentityResolver
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger

	// MaxMessageBytes caps a single inbound frame. <= 0 leaves the
	// transport default in place.
	MaxMessageBytes int64
	// MaxMessagesPerSecond caps the inbound signal rate per connection.
	// Excess messages are dropped; the connection stays open. <= 0
	// disables the limiter.
	MaxMessagesPerSecond int

	// Clock drives the rate limiter. Nil means the wall clock.
	Clock ratelimit.Clock
}

// Server accepts WebSocket connections on /ws/video/:room and relays
// signals between the members of each room group.
type Server struct {
	registry   Registry
	identities IdentityResolver
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	maxMessageBytes      int64
	maxMessagesPerSecond int
	clock                ratelimit.Clock

	upgrader websocket.Upgrader
}

func NewServer(cfg Config) *Server {
	return &Server{
		registry:             cfg.Registry,
		identities:           cfg.Identities,
		metrics:              cfg.Metrics,
		logger:               cfg.Logger,
		maxMessageBytes:      cfg.MaxMessageBytes,
		maxMessagesPerSecond: cfg.MaxMessagesPerSecond,
		clock:                cfg.Clock,
		upgrader: websocket.Upgrader{
			// Origin checks belong to the outer CORS layer; the signaling
			// credential is the ?token= query parameter.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleVideo is the echo handler for GET /ws/video/:room.
func (s *Server) HandleVideo(c echo.Context) error {
	room := c.Param("room")
	if !roomNamePattern.MatchString(room) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown room")
	}

	identity := s.identities.IdentityFromQueryToken(c.QueryParam("token"))

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		return nil
	}

	s.metrics.Inc(metrics.SignalConnect)

	sess := &session{
		srv:      s,
		conn:     conn,
		identity: identity,
		group:    GroupName(room),
		limiter:  ratelimit.NewMessageLimiter(s.clock, s.maxMessagesPerSecond),
		logger: s.logger.With().
			Str("room", room).
			Str("role", string(identity.Role)).
			Logger(),
	}
	sess.run()
	return nil
}

// session is one WebSocket connection's lifetime inside a room group. It
// implements Member; Deliver serializes writes under writeMu so broadcasts
// from other members never interleave frames.
type session struct {
	srv      *Server
	conn     *websocket.Conn
	identity auth.Identity
	group    string
	limiter  *ratelimit.MessageLimiter
	logger   zerolog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (sess *session) run() {
	defer sess.close()

	if sess.identity.Anonymous() {
		sess.srv.metrics.Inc(metrics.SignalRejectAnonymous)
		sess.logger.Info().Msg("rejecting anonymous signaling connection")
		sess.closeWith(CloseUnauthenticated, "authentication required")
		return
	}

	if sess.srv.maxMessageBytes > 0 {
		sess.conn.SetReadLimit(sess.srv.maxMessageBytes)
	}

	sess.srv.registry.Join(sess.group, sess)
	defer sess.srv.registry.Leave(sess.group, sess)

	sess.srv.metrics.Inc(metrics.SignalJoin)
	sess.logger.Info().Msg("joined signaling room")

	sess.srv.registry.Broadcast(sess.group, sess, readyMessage(sess.identity.Role))
	if sess.identity.IsPatient() {
		sess.srv.registry.Broadcast(sess.group, sess,
			patientJoinedMessage(sess.identity.ID, sess.identity.Name))
	}

	for {
		msgType, data, err := sess.conn.ReadMessage()
		if err != nil {
			sess.srv.metrics.Inc(metrics.SignalDisconnect)
			return
		}
		if msgType != websocket.TextMessage {
			sess.srv.metrics.Inc(metrics.SignalDropMalformed)
			continue
		}
		if !sess.limiter.AllowMessage() {
			sess.srv.metrics.Inc(metrics.SignalDropRateLimited)
			continue
		}

		in, err := ParseInbound(data)
		if err != nil {
			sess.srv.metrics.Inc(metrics.SignalDropMalformed)
			sess.logger.Debug().Err(err).Msg("dropping malformed signal")
			continue
		}
		if in.Kind == KindUnknown {
			sess.srv.metrics.Inc(metrics.SignalDropUnknown)
			continue
		}
		if !in.AllowedFor(sess.identity.Role) {
			sess.srv.metrics.Inc(metrics.SignalDropRole)
			sess.logger.Debug().
				Str("signal", in.Kind.String()).
				Msg("dropping signal not allowed for role")
			continue
		}

		envelope, err := in.Envelope()
		if err != nil {
			sess.srv.metrics.Inc(metrics.SignalDropMalformed)
			continue
		}

		sess.srv.registry.Broadcast(sess.group, sess, envelope)

		switch in.Kind {
		case KindOffer:
			sess.srv.metrics.Inc(metrics.SignalRelayOffer)
		case KindAnswer:
			sess.srv.metrics.Inc(metrics.SignalRelayAnswer)
		case KindICE:
			sess.srv.metrics.Inc(metrics.SignalRelayICE)
		}
	}
}

// Deliver implements Member. Write errors are swallowed: a dead receiver is
// detected by its own read loop, which then leaves the group.
func (sess *session) Deliver(payload []byte) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sess.conn.WriteMessage(websocket.TextMessage, payload)
}

func (sess *session) closeWith(code int, reason string) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_ = sess.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}

func (sess *session) close() {
	sess.closeOnce.Do(func() {
		_ = sess.conn.Close()
	})
}
