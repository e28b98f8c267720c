// internal/model/models.go
package model

import "time"

// Commit represents a single commit entry exposed by the remote commit feed.
// Instances are built from a server response and never mutated afterwards.
type Commit struct {
	ID        int        `json:"id"`
	Branch    string     `json:"branch"`
	Changeset string     `json:"changeset"`
	Created   *time.Time `json:"created"`
	Likes     int        `json:"likes"`
	Dislikes  int        `json:"dislikes"`
	Message   string     `json:"message"`
	User      CommitUser `json:"user"`
}

// CommitUser is the author attached to a commit.
type CommitUser struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CommitResult is the wire envelope for every listing endpoint: a reported
// total plus one page of results. It only exists as a deserialization target.
type CommitResult struct {
	Total   int      `json:"total"`
	Results []Commit `json:"results"`
}
