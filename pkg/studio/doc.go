// Package studio provides the content-creation tools the agent exposes:
// thumbnails, QR codes, social cards, video montages and speech audio.
//
// Every tool writes one file into the studio's output directory and reports
// the outcome as a Result. Processing failures are reported inside the
// Result with status "error" so the model can read them; only malformed
// arguments surface as Go errors.
package studio
