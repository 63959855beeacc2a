package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"admissions-crm/internal/ai"
	"admissions-crm/internal/audit"
	"admissions-crm/internal/callrecords"
	"admissions-crm/internal/drafts"
	"admissions-crm/internal/leads"
	"admissions-crm/pkg/utils"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLeadBusy means another composer currently owns this lead.
	ErrLeadBusy = errors.New("session: lead is open in another composer")
	// ErrSessionNotFound means no live controller exists for the id.
	ErrSessionNotFound = errors.New("session: not found")
)

// Manager tracks live controllers, one per open composer.
//
// Each lead may be open in at most one composer at a time, enforced through a
// Redis slot when a client is configured. The draft store itself stays
// last-writer-wins; the slot only prevents two live controllers from fighting
// over one lead.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Controller

	cfg  Config
	deps ManagerDeps
	log  *slog.Logger
}

type ManagerDeps struct {
	Client ai.Client
	Leads  leads.Repository

	// Drafts overrides the default per-workspace Redis store; mainly for tests.
	Drafts  drafts.Store
	Records *callrecords.Service
	Audit   *audit.Service

	// Redis enables per-lead composer slots; nil disables locking.
	Redis   *redis.Client
	SlotTTL time.Duration

	Logger *slog.Logger
}

func NewManager(cfg Config, deps ManagerDeps) *Manager {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.SlotTTL <= 0 {
		deps.SlotTTL = 2 * time.Hour
	}
	return &Manager{
		sessions: map[string]*Controller{},
		cfg:      cfg,
		deps:     deps,
		log:      log,
	}
}

// Open creates a controller for a lead, restores any draft, and kicks off the
// automatic composer-open analysis.
func (m *Manager) Open(ctx context.Context, workspaceID, userID, role, leadID string) (*Controller, error) {
	if m.deps.Leads == nil {
		return nil, errors.New("session: leads repository not configured")
	}
	lead, err := m.deps.Leads.Get(ctx, workspaceID, leadID)
	if err != nil {
		return nil, err
	}

	// Draft keys are per lead; the store itself namespaces per workspace.
	store := m.deps.Drafts
	if store == nil && m.deps.Redis != nil {
		store = drafts.NewRedisStore(m.deps.Redis, workspaceID, 0)
	}

	c := NewController(workspaceID, userID, role, lead, m.cfg, Deps{
		Client:  m.deps.Client,
		Drafts:  store,
		Records: m.deps.Records,
		Audit:   m.deps.Audit,
		Logger:  m.log,
		ScoreSink: func(score int) {
			// Persist the fresh score as the lead's last known signal.
			if err := m.deps.Leads.UpdateScore(context.Background(), workspaceID, leadID, score); err != nil {
				m.log.Debug("lead score update failed", "lead_id", leadID, "err", err)
			}
		},
	})

	if m.deps.Redis != nil {
		ok, err := utils.AcquireComposerSlot(ctx, m.deps.Redis, slotKey(workspaceID, leadID), c.SessionID(), m.deps.SlotTTL)
		if err != nil {
			m.log.Warn("composer slot acquire failed, proceeding unlocked", "lead_id", leadID, "err", err)
		} else if !ok {
			c.Close(ctx)
			return nil, ErrLeadBusy
		}
	}

	c.RestoreDraft(ctx)
	c.Analyze()

	m.mu.Lock()
	m.sessions[c.SessionID()] = c
	m.mu.Unlock()
	return c, nil
}

// Get returns a live controller by session id.
func (m *Manager) Get(sessionID string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Close tears down one composer and releases its lead slot.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	c, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	c.Close(ctx)
	if m.deps.Redis != nil {
		if err := utils.ReleaseComposerSlot(ctx, m.deps.Redis, slotKey(c.workspaceID, c.LeadID()), c.SessionID()); err != nil {
			m.log.Warn("composer slot release failed", "lead_id", c.LeadID(), "err", err)
		}
	}
	return nil
}

// CloseAll tears down every live controller; used on shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	all := make([]*Controller, 0, len(m.sessions))
	for id, c := range m.sessions {
		all = append(all, c)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, c := range all {
		c.Close(ctx)
		if m.deps.Redis != nil {
			_ = utils.ReleaseComposerSlot(ctx, m.deps.Redis, slotKey(c.workspaceID, c.LeadID()), c.SessionID())
		}
	}
}

func slotKey(workspaceID, leadID string) string {
	return "composer:" + workspaceID + ":" + leadID
}
