package handler

import (
	"crypto/subtle"

	"catalog-service/internal/session"
	"catalog-service/internal/utils"

	"github.com/gin-gonic/gin"
)

const stateBytes = 32

// issueState gives the session a fresh anti-forgery token. The caller saves.
func issueState(sess *session.Session) error {
	state, err := utils.RandomString(stateBytes)
	if err != nil {
		return err
	}
	sess.State = state
	return nil
}

func validateState(c *gin.Context, sess *session.Session) bool {
	got := c.Query("state")
	if got == "" || sess.State == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(sess.State)) == 1
}
