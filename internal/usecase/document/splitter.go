package document

// splitText cuts text into rune-based windows of size chunkSize with
// chunkOverlap runes shared between neighbors. Rune windows keep CJK text
// from being cut mid-character; no attempt is made to align on sentence
// boundaries because the overlap already preserves local context.
func splitText(text string, chunkSize, chunkOverlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}

	step := chunkSize - chunkOverlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
