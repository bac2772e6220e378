package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/oauth2"
)

// TokenStore holds each user's Gmail OAuth token. The interactive
// authorization flow that produces tokens lives outside this service; the
// sender only reads them, and writes back refreshed tokens.
type TokenStore interface {
	// Token returns the stored token for the user or ErrNotAuthorized.
	Token(ctx context.Context, userEmail string) (*oauth2.Token, error)

	// Save stores or replaces the user's token.
	Save(ctx context.Context, userEmail string, tok *oauth2.Token) error
}

const tokensCollection = "gmail_tokens"

type tokenDoc struct {
	UserEmail    string    `bson:"_id"`
	AccessToken  string    `bson:"accessToken"`
	RefreshToken string    `bson:"refreshToken"`
	TokenType    string    `bson:"tokenType"`
	Expiry       time.Time `bson:"expiry"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type mongoTokenStore struct {
	col *mongo.Collection
}

// NewMongoTokenStore returns a TokenStore backed by the "gmail_tokens"
// collection.
func NewMongoTokenStore(db *mongo.Database) TokenStore {
	return &mongoTokenStore{col: db.Collection(tokensCollection)}
}

func (s *mongoTokenStore) Token(ctx context.Context, userEmail string) (*oauth2.Token, error) {
	var doc tokenDoc
	err := s.col.FindOne(ctx, bson.M{"_id": userEmail}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
		TokenType:    doc.TokenType,
		Expiry:       doc.Expiry,
	}, nil
}

func (s *mongoTokenStore) Save(ctx context.Context, userEmail string, tok *oauth2.Token) error {
	doc := tokenDoc{
		UserEmail:    userEmail,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": userEmail}, doc, options.Replace().SetUpsert(true))
	return err
}

// memoryTokenStore is an in-memory TokenStore for tests.
type memoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]oauth2.Token
}

// NewMemoryTokenStore returns an empty in-memory TokenStore.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{tokens: make(map[string]oauth2.Token)}
}

func (s *memoryTokenStore) Token(ctx context.Context, userEmail string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[userEmail]
	if !ok {
		return nil, ErrNotAuthorized
	}
	return &tok, nil
}

func (s *memoryTokenStore) Save(ctx context.Context, userEmail string, tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userEmail] = *tok
	return nil
}
