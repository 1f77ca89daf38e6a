package core

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountDirectory answers whether an account identifier is known. Each call
// must consult fresh data.
type AccountDirectory interface {
	Contains(id string) bool
}

// VerifiedLedger records users who completed verification.
type VerifiedLedger interface {
	IsVerified(userID int64) bool
	Save(name, code string, userID int64) (bool, error)
}

// VerificationService runs the verification dialogue for every chat. It keeps
// one Session per chat and performs the lookups and writes that Next asks for.
type VerificationService struct {
	accounts AccountDirectory
	ledger   VerifiedLedger
	codes    func() (string, error)
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[int64]Session
}

func NewVerificationService(accounts AccountDirectory, ledger VerifiedLedger, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		accounts: accounts,
		ledger:   ledger,
		codes:    GenerateCode,
		logger:   logger.Named("verification"),
		sessions: make(map[int64]Session),
	}
}

// Start begins a new dialogue for chatID, discarding any session in progress.
func (s *VerificationService) Start(chatID int64) string {
	session := Session{ID: uuid.NewString(), ChatID: chatID, State: StateAwaitingStart}
	next, action := Next(session, Event{AlreadyVerified: s.ledger.IsVerified(chatID)})
	return s.apply(next, action)
}

// Continue feeds text to the chat's active dialogue. It returns false when
// the chat has no dialogue in progress.
func (s *VerificationService) Continue(chatID int64, text string) (string, bool) {
	s.mu.Lock()
	session, ok := s.sessions[chatID]
	s.mu.Unlock()
	if !ok {
		return "", false
	}

	ev := Event{Text: text}
	if session.State == StateAwaitingAccount && !IsDone(text) {
		ev.Known = s.accounts.Contains(text)
	}
	next, action := Next(session, ev)
	return s.apply(next, action), true
}

// Active reports whether chatID has a dialogue in progress.
func (s *VerificationService) Active(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[chatID]
	return ok
}

// Reset drops the chat's dialogue, if any.
func (s *VerificationService) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

func (s *VerificationService) apply(session Session, action Action) string {
	log := s.logger.With(
		zap.String("session_id", session.ID),
		zap.Int64("chat_id", session.ChatID),
		zap.Stringer("state", session.State),
	)

	var reply string
	switch action {
	case ActionAlreadyVerified:
		log.Info("user already verified")
		reply = msgAlreadyVerified
	case ActionAskName:
		log.Debug("dialogue started")
		reply = msgWelcome
	case ActionAskFirstAccount:
		reply = msgAskFirstAccount(session.Name)
	case ActionAccountAccepted:
		account := session.Accounts[len(session.Accounts)-1]
		log.Debug("account verified", zap.String("account", account), zap.Int("verified", len(session.Accounts)))
		reply = msgAccountVerified(account)
	case ActionAccountRejected:
		log.Debug("account not found")
		reply = msgAccountNotFound
	case ActionIssueCode:
		reply = s.issueCode(log, session)
	case ActionNoAccounts:
		log.Info("dialogue ended without verified accounts")
		reply = msgNoAccounts
	default:
		reply = msgSendStart
	}

	s.mu.Lock()
	if session.State == StateCompleted || action == ActionNone {
		delete(s.sessions, session.ChatID)
	} else {
		s.sessions[session.ChatID] = session
	}
	s.mu.Unlock()
	return reply
}

func (s *VerificationService) issueCode(log *zap.Logger, session Session) string {
	code, err := s.codes()
	if err != nil {
		log.Error("code generation failed", zap.Error(err))
		return msgSaveFailed
	}
	added, err := s.ledger.Save(session.Name, code, session.ChatID)
	if err != nil {
		log.Error("failed to record verified user", zap.Error(err))
		return msgSaveFailed
	}
	if !added {
		// Another completion for this user won the race; the first code stands.
		log.Warn("user was already in the ledger")
		return msgAlreadyVerified
	}
	log.Info("verification complete", zap.Int("accounts", len(session.Accounts)))
	return msgCodeIssued(code)
}
