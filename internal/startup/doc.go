// Package startup handles configuration loading and structured startup
// logging for the product media service.
//
// Configuration is read from environment variables, optionally seeded
// from a .env file, and validated before the server starts: the upload
// and database directories must exist and be writable, and the external
// video tools (ffmpeg/ffprobe) are probed so missing binaries surface at
// boot rather than on the first video upload.
package startup
