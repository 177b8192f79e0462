package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/2beens/fittrack/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "fittrack-session||"
	tokensSetKey     = "fittrack-sessions"
)

var ErrNoSession = errors.New("no session")

// Session is the server side state bound to one logged in client.
type Session struct {
	Token     string
	UserID    int
	Username  string
	CreatedAt time.Time
}

// SessionStore keeps the token -> user identity mapping in redis.
type SessionStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewSessionStore(ttl time.Duration, redisClient *redis.Client) *SessionStore {
	return &SessionStore{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *SessionStore) Create(ctx context.Context, user *User, createdAt time.Time) (string, error) {
	token, err := s.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + token
	cmdSet := s.redisClient.HSet(ctx, sessionKey,
		"user_id", user.ID,
		"username", user.Username,
		"created_at", createdAt.Unix(),
	)
	if err := cmdSet.Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	cmdSAdd := s.redisClient.SAdd(ctx, tokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Get returns the session for the given token, or ErrNoSession when the
// token is unknown or the session is older than the TTL.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	sessionKey := sessionKeyPrefix + token
	cmd := s.redisClient.HGetAll(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return nil, err
	}

	sessionData := cmd.Val()
	if len(sessionData) == 0 {
		return nil, ErrNoSession
	}

	userID, err := strconv.Atoi(sessionData["user_id"])
	if err != nil {
		return nil, err
	}
	createdAtUnix, err := strconv.ParseInt(sessionData["created_at"], 10, 64)
	if err != nil {
		return nil, err
	}

	createdAt := time.Unix(createdAtUnix, 0)
	if time.Since(createdAt) > s.ttl {
		return nil, ErrNoSession
	}

	return &Session{
		Token:     token,
		UserID:    userID,
		Username:  sessionData["username"],
		CreatedAt: createdAt,
	}, nil
}

// Delete removes the session state unconditionally (logout).
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return err
	}

	// remove token from the list of sessions
	return s.redisClient.SRem(ctx, tokensSetKey, token).Err()
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *SessionStore) ScanAndClean(ctx context.Context) {
	cmd := s.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! session store, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Warnln("=> session store, scan and clean abort, no sessions")
		return
	}

	log.Warnf("=> session store, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		sessionKey := sessionKeyPrefix + token
		cmd := s.redisClient.HGet(ctx, sessionKey, "created_at")
		if err := cmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("=> session store, scan and clean token %s: %s", token, err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(cmd.Val(), 10, 64)
		if err != nil {
			log.Errorf("=> session store, scan and clean token %s: %s", token, err)
			continue
		}

		createdAt := time.Unix(createdAtUnix, 0)
		if time.Since(createdAt) > s.ttl {
			log.Warnf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := s.Delete(ctx, token); err != nil {
			log.Errorf("=> session store, clean token %s: %s", token, err)
		}
	}
}
