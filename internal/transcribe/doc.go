// Package transcribe turns audio chunks into plain text by shelling out to
// a speech recognizer. The default engine wraps the whisper.cpp CLI.
package transcribe
