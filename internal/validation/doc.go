// Package validation holds advisory checks. RESTValidator lints a route
// table against REST naming conventions and RequestValidator turns request
// validation failures into readable field messages. Neither rejects anything
// on its own; callers decide what to do with the findings.
package validation
