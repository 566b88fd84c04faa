package handler

import (
	"net/http"
)

// chatReply answers a support message with the assistant's canned reply.
func (h *Handler) chatReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.chat.Reply(r.Context(), req.Message)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Reply string `json:"reply"`
	}{Reply: reply})
}
