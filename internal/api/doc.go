// Package api translates HTTP requests into calls on the learning services
// and renders their results. Handlers depend on small interfaces declared
// next to them, decode and validate JSON bodies, and report failures through
// HandleAPIError so status codes and messages stay consistent. Successful
// responses are wrapped as {"data": ...}, with "page" added for paged lists.
package api
