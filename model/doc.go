// Package model defines the operation descriptor shared by the planner, the
// risk classifier, the approval coordinator and the execution gatekeeper.
package model
