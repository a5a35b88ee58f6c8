package stemmer

// IsConsonant reports whether w[i] acts as a consonant. The letter y is a
// consonant at the start of a word or after a vowel, and a vowel after a
// consonant. Anything that is not a lowercase vowel is a consonant.
func IsConsonant(w []byte, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !IsConsonant(w, i-1)
	}
	return true
}

// Measure counts the VC sequences in w, i.e. m in [C](VC)^m[V].
func Measure(w []byte) int {
	n := len(w)
	i := 0
	// skip the optional leading consonant run
	for i < n && IsConsonant(w, i) {
		i++
	}
	m := 0
	for i < n {
		for i < n && !IsConsonant(w, i) {
			i++
		}
		if i == n {
			break
		}
		for i < n && IsConsonant(w, i) {
			i++
		}
		m++
	}
	return m
}

// HasVowel reports whether any position of w is a vowel.
func HasVowel(w []byte) bool {
	for i := range w {
		if !IsConsonant(w, i) {
			return true
		}
	}
	return false
}

// EndsDoubleConsonant reports whether w ends with two identical consonants.
func EndsDoubleConsonant(w []byte) bool {
	n := len(w)
	if n < 2 || w[n-1] != w[n-2] {
		return false
	}
	return IsConsonant(w, n-1)
}

// EndsCVC reports whether w ends consonant-vowel-consonant where the final
// consonant is not w, x or y (hop, but not snow, box or tray).
func EndsCVC(w []byte) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if !IsConsonant(w, n-1) || IsConsonant(w, n-2) || !IsConsonant(w, n-3) {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}
