// Package deck extracts per-slide text from uploaded presentations.
//
// PowerPoint (.pptx) files are read directly from their Office Open XML parts;
// PDF files are read with MuPDF through go-fitz, one slide per page. Every
// upload is identified by the BLAKE2b-256 hash of its bytes so that repeated
// uploads of the same deck can reuse earlier work.
package deck
