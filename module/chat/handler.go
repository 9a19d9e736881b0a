package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	security "VProject/middleware/security"
	chatmodel "VProject/module/chat/model"
	"VProject/service/storage"
	"VProject/tools/errs"
)

// HistoryHandler serves GET /api/messages/:user_id — the conversation
// between the caller and user_id, ascending by timestamp. The mutual
// connection is checked here and again inside the store.
func HistoryHandler(messages storage.MessageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := security.UserFrom(c)
		otherID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
		if err != nil || otherID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		history, err := messages.History(c.Request.Context(), user.ID, otherID)
		if errors.Is(err, errs.ErrNoMutualConnection) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No mutual connection"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
			return
		}
		if history == nil {
			history = []*chatmodel.Message{} // marshal as [] rather than null
		}
		c.JSON(http.StatusOK, history)
	}
}
