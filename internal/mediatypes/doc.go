// Package mediatypes classifies uploads as photo or video from their
// declared content type and holds the allow-lists for accepted formats.
package mediatypes
