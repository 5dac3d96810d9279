// Package http provides the HTTP client used for fetching auxiliary
// assets such as thumbnails. It decorates the default transport with
// debug request/response logging and User-Agent header injection.
package http
