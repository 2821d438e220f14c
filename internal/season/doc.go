// Package season provides the domain model for a venue's Saturday calendar.
//
// The season package holds the per-Saturday records scraped from the venue
// calendar, the combined table built across a fetch span of months, and the
// availability check that reports Saturdays with no booked events inside an
// inclusive date window.
package season
