package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Streamer attaches an upgraded connection to a user.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string, admin bool)
}

// websocket clients cannot set headers, so the token comes in the query
func serveWS(auth Authenticator, hub Streamer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := auth.Authenticate(c.Query("token"))
		if err != nil {
			writeError(c, err)
			return
		}
		hub.Serve(c.Writer, c.Request, sess.UserID, sess.IsAdmin())
	}
}
