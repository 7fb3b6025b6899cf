package testutils

import "math/rand"

// Inspired by:
// - https://stackoverflow.com/questions/22892120/how-to-generate-a-random-string-of-a-fixed-length-in-go
func RandomString(n int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"0123456789_"

	result := make([]byte, n)
	for i := range result {
		result[i] = chars[rand.Intn(len(chars))]
	}
	return string(result)
}

// RandomEmail generates a recipient address that won't collide across test
// records sharing a feedback table.
func RandomEmail(n int, domain string) string {
	return RandomString(n) + "@" + domain
}
