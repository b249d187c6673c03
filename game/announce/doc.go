// Package announce turns engine outcomes into what a player hears and reads:
// spoken text, short tone cues, status announcements and HUD lines.
//
// Nothing here plays audio. A Cue describes the sound and the text, and the
// presentation layer (a browser client on the WebSocket, the terminal player)
// decides how to render it.
package announce
