package httpapi

import (
	"net/http"

	"github.com/farhapartex/stream-search/internal/handlers"
)

type errorReply struct {
	status  int
	code    string
	message string
}

// replyFor maps a search error to what the user is shown.
func replyFor(err error) errorReply {
	switch handlers.Classify(err) {
	case handlers.KindInvalid:
		return errorReply{http.StatusBadRequest, "BAD_REQUEST", err.Error()}
	case handlers.KindTimeout:
		return errorReply{http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "the streaming platform did not answer in time"}
	case handlers.KindUpstream:
		return errorReply{http.StatusBadGateway, "BAD_GATEWAY", "the streaming platform could not be reached"}
	case handlers.KindEmpty:
		return errorReply{http.StatusNotFound, "NOT_FOUND", "no streams matched the search"}
	default:
		return errorReply{http.StatusInternalServerError, "INTERNAL_ERROR", "search failed"}
	}
}
