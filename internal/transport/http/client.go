package http

import (
	"net/http"

	"github.com/ytget/ytdl-helper/internal/utils"
)

// NewClient creates the HTTP client used for auxiliary asset fetches.
// The transport chain injects a User-Agent header and, at debug level,
// logs full request/response dumps.
func NewClient(userAgentProvider utils.UserAgentProvider) *http.Client {
	if userAgentProvider == nil {
		userAgentProvider = utils.NewSimpleUserAgentProvider(DefaultUserAgent)
	}

	return &http.Client{
		Transport: NewUserAgentInjector(
			NewLogTransport(http.DefaultTransport, 0),
			userAgentProvider),
		Timeout: DefaultTimeout,
	}
}
