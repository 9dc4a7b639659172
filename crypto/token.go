package crypto

// CipherTok returns the next cipher name in a delimited list and the
// remainder after it. Delimiters are space, tab, CR, LF, comma, semicolon
// and colon; leading delimiters are skipped. Both results are substrings of
// s, so iterating a configuration string such as
// "aes-256-gcm, chacha20-poly1305-ietf" allocates nothing. An exhausted
// input yields two empty strings.
func CipherTok(s string) (token, rest string) {
	i := 0
	for i < len(s) && isCipherSep(s[i]) {
		i++
	}
	j := i
	for j < len(s) && !isCipherSep(s[j]) {
		j++
	}
	if j <= i {
		return "", ""
	}
	return s[i:j], s[j:]
}

func isCipherSep(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ',', ';', ':':
		return true
	}
	return false
}
