// Package scraper provides HTTP fetching and HTML parsing for a venue's event calendar.
//
// The venue publishes its calendar through a WordPress admin-ajax endpoint that returns
// one month of the calendar grid as an HTML fragment wrapped in JSON. The scraper posts
// one request per month and extracts, for every Saturday in the grid, the date and the
// number of booked events. Padding cells borrowed from adjacent months are skipped and the
// weekday is computed from the date rather than trusted from the markup.
package scraper
