// Package fetch - platform.go identifies which job board a URL belongs to.
package fetch

import (
	"net/url"
	"strings"
)

// Board identifies a job board backend.
type Board string

const (
	// BoardLinkedIn is linkedin.com
	BoardLinkedIn Board = "linkedin"
	// BoardIndeed is indeed.com and its country subdomains
	BoardIndeed Board = "indeed"
	// BoardGoogle is the Google jobs search surface
	BoardGoogle Board = "google"
	// BoardAdzuna is the Adzuna jobs API
	BoardAdzuna Board = "adzuna"
	// BoardUnknown is an unrecognized host
	BoardUnknown Board = "unknown"
)

// DetectBoard identifies the job board from a posting URL.
func DetectBoard(urlStr string) Board {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return BoardUnknown
	}

	host := strings.ToLower(parsed.Hostname())

	switch {
	case hostIs(host, "linkedin.com"):
		return BoardLinkedIn
	case hostIs(host, "indeed.com") || strings.Contains(host, ".indeed."):
		return BoardIndeed
	case hostIs(host, "google.com"):
		return BoardGoogle
	case hostIs(host, "adzuna.com") || strings.Contains(host, ".adzuna."):
		return BoardAdzuna
	default:
		return BoardUnknown
	}
}

// IDPrefix returns the short prefix used for board-native listing ids.
func (b Board) IDPrefix() string {
	switch b {
	case BoardLinkedIn:
		return "li"
	case BoardIndeed:
		return "in"
	case BoardGoogle:
		return "go"
	case BoardAdzuna:
		return "az"
	default:
		return "xx"
	}
}

// IndeedHost returns the country-specific Indeed host for an ISO country code.
func IndeedHost(countryCode string) string {
	switch strings.ToUpper(countryCode) {
	case "DE":
		return "de.indeed.com"
	case "AT":
		return "at.indeed.com"
	case "CH":
		return "ch.indeed.com"
	case "CA":
		return "ca.indeed.com"
	case "GB":
		return "uk.indeed.com"
	default:
		return "www.indeed.com"
	}
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
