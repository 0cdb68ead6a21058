package api

import (
	"net/http"
	"strconv"

	"teamspace/auth"
	"teamspace/conversation"
	"teamspace/domain"
	"teamspace/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func identity(r *http.Request) *auth.Claims {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		// Routes are mounted behind Authenticate
		panic("api: request without claims")
	}
	return claims
}

func boardID(w http.ResponseWriter, r *http.Request) (domain.BoardID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "boardID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid board id"})
		return 0, false
	}
	return domain.BoardID(id), true
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid task id"})
		return uuid.Nil, false
	}
	return id, true
}

// conversationKey scopes assistant conversations to their user.
func conversationKey(r *http.Request) string {
	return identity(r).UserID + ":" + chi.URLParam(r, "conversationID")
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request) {
	dispatch[[]domain.Board](s, w, r, domain.ListBoards{}, http.StatusOK)
}

func (s *Server) createBoard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &body) {
		return
	}
	dispatch[domain.Board](s, w, r, domain.CreateBoard{Name: body.Name, UserID: identity(r).UserID}, http.StatusCreated)
}

func (s *Server) getBoardTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := boardID(w, r)
	if !ok {
		return
	}
	dispatch[[]domain.Task](s, w, r, domain.GetBoardTasks{BoardID: id}, http.StatusOK)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	id, ok := boardID(w, r)
	if !ok {
		return
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !decode(w, r, &body) {
		return
	}
	dispatch[domain.Task](s, w, r, domain.CreateTask{
		BoardID: id, Title: body.Title, Description: body.Description, UserID: identity(r).UserID,
	}, http.StatusCreated)
}

func (s *Server) moveTask(w http.ResponseWriter, r *http.Request) {
	board, ok := boardID(w, r)
	if !ok {
		return
	}
	task, ok := taskID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status domain.TaskStatus `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	dispatch[domain.Task](s, w, r, domain.MoveTask{
		BoardID: board, TaskID: task, Status: body.Status, UserID: identity(r).UserID,
	}, http.StatusOK)
}

func (s *Server) assignTask(w http.ResponseWriter, r *http.Request) {
	board, ok := boardID(w, r)
	if !ok {
		return
	}
	task, ok := taskID(w, r)
	if !ok {
		return
	}
	var body struct {
		AssigneeID    string `json:"assignee_id"`
		AssigneeEmail string `json:"assignee_email"`
	}
	if !decode(w, r, &body) {
		return
	}
	dispatch[domain.Task](s, w, r, domain.AssignTask{
		BoardID: board, TaskID: task, AssigneeID: body.AssigneeID, AssigneeEmail: body.AssigneeEmail,
		UserID: identity(r).UserID,
	}, http.StatusOK)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	board, ok := boardID(w, r)
	if !ok {
		return
	}
	task, ok := taskID(w, r)
	if !ok {
		return
	}
	dispatch[struct{}](s, w, r, domain.DeleteTask{BoardID: board, TaskID: task, UserID: identity(r).UserID}, http.StatusNoContent)
}

func (s *Server) getChatHistory(w http.ResponseWriter, r *http.Request) {
	query := domain.GetChatHistory{Room: chi.URLParam(r, "room")}
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		query.Cursor = &cursor
	}
	dispatch[domain.ChatPage](s, w, r, query, http.StatusOK)
}

func (s *Server) postChatMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &body) {
		return
	}
	claims := identity(r)
	dispatch[domain.ChatMessage](s, w, r, domain.PostChatMessage{
		Room: chi.URLParam(r, "room"), Content: body.Content, UserID: claims.UserID, Author: claims.Name,
	}, http.StatusCreated)
}

func (s *Server) searchMessages(w http.ResponseWriter, r *http.Request) {
	dispatch[[]domain.SearchHit](s, w, r, domain.SearchMessages{Query: r.URL.Query().Get("q")}, http.StatusOK)
}

func (s *Server) askAssistant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if !decode(w, r, &body) {
		return
	}
	dispatch[domain.AssistantReply](s, w, r, domain.AskAssistant{
		ConversationID: conversationKey(r), Prompt: body.Prompt, UserID: identity(r).UserID,
	}, http.StatusOK)
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	dispatch[[]conversation.Message](s, w, r, domain.GetConversation{ConversationID: conversationKey(r)}, http.StatusOK)
}

func (s *Server) resetConversation(w http.ResponseWriter, r *http.Request) {
	dispatch[struct{}](s, w, r, domain.ResetConversation{ConversationID: conversationKey(r)}, http.StatusNoContent)
}

func (s *Server) listPresence(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"online": s.presence.Online()})
}

func (s *Server) joinGroup(w http.ResponseWriter, r *http.Request) {
	s.membership(w, r, s.hub.JoinGroup)
}

func (s *Server) leaveGroup(w http.ResponseWriter, r *http.Request) {
	s.membership(w, r, s.hub.LeaveGroup)
}

// membership changes the groups of a connection owned by the caller.
func (s *Server) membership(w http.ResponseWriter, r *http.Request, change func(connectionID, group string) error) {
	connectionID := chi.URLParam(r, "connectionID")
	group := chi.URLParam(r, "group")
	owner, ok := s.hub.Owner(connectionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errors.ErrUnknownConnection.Error()})
		return
	}
	if owner != identity(r).UserID {
		writeJSON(w, http.StatusForbidden, errorBody{Error: errors.ErrForbidden.Error()})
		return
	}
	if err := change(connectionID, group); err != nil {
		// The connection may have closed between the two calls
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

