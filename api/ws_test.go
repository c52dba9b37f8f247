package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type staticAuth map[string]domain.Session

func (a staticAuth) Authenticate(token string) (domain.Session, error) {
	if s, ok := a[token]; ok {
		return s, nil
	}
	return domain.Session{}, domain.ErrUnauthorized
}

type streamerSpy struct {
	userIDs []string
	admins  []bool
}

func (s *streamerSpy) Serve(w http.ResponseWriter, _ *http.Request, userID string, admin bool) {
	s.userIDs = append(s.userIDs, userID)
	s.admins = append(s.admins, admin)
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func TestServeWS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	spy := &streamerSpy{}
	router := gin.New()
	router.GET("/ws", serveWS(staticAuth{"tok": testDispatcher}, spy))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ws?token=tok", nil))
	assert.Equal(t, http.StatusSwitchingProtocols, w.Code)
	assert.Equal(t, []string{testDispatcher.UserID}, spy.userIDs)
	assert.Equal(t, []bool{false}, spy.admins)
}
