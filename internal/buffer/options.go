package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithIdentity sets the buffer's content identity.
func WithIdentity(id Identity) Option {
	return func(b *Buffer) {
		b.identity = id
	}
}

// WithLineEnding sets the buffer's line ending style.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// WithRawLineEndings keeps line endings exactly as given instead of
// normalizing them to the buffer's style. Used for content read from disk,
// where a CRLF file must not compare equal to its LF twin.
func WithRawLineEndings() Option {
	return func(b *Buffer) {
		b.raw = true
	}
}

// DetectLineEnding returns the most common line ending in text.
// Returns LineEndingLF if no line endings are found.
func DetectLineEnding(text string) LineEnding {
	var lf, crlf, cr int
	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n':
			crlf++
			i++
		case text[i] == '\r':
			cr++
		case text[i] == '\n':
			lf++
		}
	}

	switch {
	case crlf > 0 && crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > 0 && cr >= lf:
		return LineEndingCR
	default:
		return LineEndingLF
	}
}
