// Package fakebackend is an in-process double of the resume-analysis HTTP
// API. It keeps users, resumes and analyses in memory, issues HS256 tokens,
// and exposes hooks that let tests force failures or hold a request until
// released.
//
// Use it with net/http/httptest:
//
//	be := fakebackend.New()
//	srv := httptest.NewServer(be.Handler())
//	defer srv.Close()
package fakebackend
