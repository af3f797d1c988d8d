package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/zikrya/Showdrop/internal/config"
)

// Provider проверяет подлинность вызывающей стороны по bearer-токену.
// Токен имеет вид "<base64url(userID)>.<base64url(HMAC-SHA256(userID))>";
// подпись считается общим секретом сервера, сам userID — непрозрачная строка.
type Provider struct {
	secret []byte
}

// NewProvider создает провайдер идентификации.
func NewProvider(cfg *config.AuthConfig) *Provider {
	return &Provider{secret: []byte(cfg.TokenSecret)}
}

// IssueToken подписывает userID и возвращает bearer-токен.
func (p *Provider) IssueToken(userID string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(userID))
	return payload + "." + p.sign(userID)
}

// Identify извлекает проверенную идентичность из запроса.
// Возвращает ("", false) для анонимных или некорректно подписанных запросов.
func (p *Provider) Identify(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", false
	}
	return p.VerifyToken(token)
}

// VerifyToken проверяет подпись токена и возвращает userID.
func (p *Provider) VerifyToken(token string) (string, bool) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", false
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(raw) == 0 {
		return "", false
	}

	userID := string(raw)
	if !hmac.Equal([]byte(parts[1]), []byte(p.sign(userID))) {
		return "", false
	}
	return userID, true
}

func (p *Provider) sign(userID string) string {
	h := hmac.New(sha256.New, p.secret)
	h.Write([]byte(userID))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
