package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"signet/internal/config"
	"signet/internal/infra/cachemem"
	"signet/internal/infra/crypto"
	"signet/internal/infra/db"
	"signet/internal/infra/logging"
	"signet/internal/infra/logmem"
	"signet/internal/infra/memstore"
	"signet/internal/infra/sigindex"
	"signet/internal/usecase"
)

const readHeaderTimeout = 10 * time.Second

type Server struct {
	cfg    config.Config
	store  *db.Store
	r      *gin.Engine
	srv    *http.Server
	logger zerolog.Logger
	mode   string

	register    *usecase.RegisterPrincipal
	principals  *usecase.GetPrincipal
	signText    *usecase.SignText
	signMessage *usecase.SignMessage
	messages    *usecase.GetMessage
	verifier    *usecase.Verifier
	audit       *usecase.AuditBridge
	auditLog    usecase.AuditLogReader

	closers []io.Closer
}

// NewServer wires postgres repositories when the store has a connection and
// in-memory adapters otherwise. The signature index uses redis when
// REDIS_ADDR is set.
func NewServer(cfg config.Config, store *db.Store, logger zerolog.Logger) *Server {
	s := &Server{cfg: cfg, store: store, logger: logger}
	s.initDeps()
	s.initEngine()
	return s
}

type ServerDeps struct {
	Principals usecase.PrincipalRepository
	Messages   usecase.MessageRepository
	AuditSink  usecase.AuditSink
	AuditLog   usecase.AuditLogReader
	Index      usecase.SignatureIndex
	Keys       usecase.KeyProvisioner
	Crypto     usecase.CryptoService
	Clock      usecase.Clock
	NewID      usecase.IDGenerator
	Logger     zerolog.Logger
	Mode       string
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	s := &Server{cfg: cfg, logger: deps.Logger, mode: deps.Mode}
	if s.mode == "" {
		s.mode = "memory"
	}
	if deps.Keys == nil {
		deps.Keys = crypto.NewProvisioner()
	}
	if deps.Crypto == nil {
		deps.Crypto = &crypto.Service{}
	}
	s.buildUsecases(deps)
	s.initEngine()
	return s
}

func (s *Server) initDeps() {
	deps := ServerDeps{
		Keys:   crypto.NewProvisioner(),
		Crypto: &crypto.Service{},
		Logger: s.logger,
	}

	if s.store.Enabled() {
		s.mode = "postgres"
		deps.Principals = db.NewPrincipalRepository(s.store.DB)
		deps.Messages = db.NewMessageRepository(s.store.DB)
		auditRepo := db.NewAuditEntryRepository(s.store.DB)
		deps.AuditSink = auditRepo
		deps.AuditLog = auditRepo
	} else {
		s.mode = "memory"
		deps.Principals = memstore.NewPrincipals()
		deps.Messages = memstore.NewMessages()
		auditLog := logmem.New()
		deps.AuditSink = auditLog
		deps.AuditLog = auditLog
	}

	if s.cfg.RedisAddr != "" {
		index, err := s.openRedisIndex()
		if err != nil {
			s.logger.Warn().Err(err).Msg("redis signature index unavailable; using in-memory index")
		} else {
			deps.Index = index
			s.closers = append(s.closers, index)
		}
	}
	if deps.Index == nil {
		deps.Index = cachemem.New(s.cfg.SignatureIndexTTL)
	}

	s.buildUsecases(deps)
}

const redisPingTimeout = 2 * time.Second

// openRedisIndex returns an index only when redis answers a ping.
func (s *Server) openRedisIndex() (*sigindex.RedisIndex, error) {
	index, err := sigindex.NewRedisIndex(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, s.cfg.SignatureIndexTTL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := index.Ping(ctx); err != nil {
		_ = index.Close()
		return nil, err
	}
	return index, nil
}

func (s *Server) buildUsecases(deps ServerDeps) {
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	s.audit = usecase.NewAuditBridge(deps.AuditSink, deps.Clock, deps.Logger)
	s.auditLog = deps.AuditLog

	s.register = &usecase.RegisterPrincipal{
		Principals: deps.Principals,
		Keys:       deps.Keys,
		Audit:      s.audit,
		Clock:      deps.Clock,
		NewID:      newID,
	}
	s.principals = &usecase.GetPrincipal{Principals: deps.Principals}
	s.signText = &usecase.SignText{
		Principals: deps.Principals,
		Crypto:     deps.Crypto,
		Audit:      s.audit,
		Index:      deps.Index,
		Logger:     deps.Logger,
	}
	s.signMessage = &usecase.SignMessage{
		Signer:   s.signText,
		Messages: deps.Messages,
		Audit:    s.audit,
		Clock:    deps.Clock,
		NewID:    newID,
	}
	s.messages = &usecase.GetMessage{Messages: deps.Messages}

	var candidates usecase.CandidateSource = usecase.FullScan{Principals: deps.Principals}
	if deps.Index != nil {
		candidates = &usecase.IndexedCandidates{
			Index:      deps.Index,
			Principals: deps.Principals,
			Logger:     deps.Logger,
		}
	}
	s.verifier = &usecase.Verifier{
		ByRecord: &usecase.VerifyByRecord{
			Messages:   deps.Messages,
			Principals: deps.Principals,
			Crypto:     deps.Crypto,
			Audit:      s.audit,
		},
		BySignature: &usecase.VerifyBySignature{
			Candidates: candidates,
			Crypto:     deps.Crypto,
			Audit:      s.audit,
		},
		Audit: s.audit,
	}
}

func (s *Server) initEngine() {
	gin.SetMode(s.cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(s.logger.With().Str("component", "http").Logger()))
	s.r = r
	s.routes()
	s.srv = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.mode})
	})
	v1 := s.r.Group("/v1")
	{
		v1.POST("/principals", s.handleRegisterPrincipal)
		v1.GET("/principals/:principal_id", s.handleGetPrincipal)
		v1.POST("/signatures", s.handleSignText)
		v1.POST("/messages", s.handleSignMessage)
		v1.GET("/messages/:message_id", s.handleGetMessage)
		v1.GET("/verify", s.handleVerifyQuery)
		v1.POST("/verify", s.handleVerifyBody)
		v1.GET("/audit/verify", s.handleVerifyAuditChain)
	}
	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// AuditDropped reports audit entries the sink refused since startup.
func (s *Server) AuditDropped() int64 {
	return s.audit.Dropped()
}

// Run blocks serving HTTP until Shutdown is called.
func (s *Server) Run() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Close releases clients the server opened. The db store is owned by the
// caller.
func (s *Server) Close() error {
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	s.closers = nil
	return err
}
