// Package models defines the data exchanged with the resume analysis API
// and the credential kept by the client.
package models
