// Package roster scrapes the read-only team, match, ranking and skills
// tables published by the Tournament Manager web server. The web server has
// no structured API for these pages, so the client parses the HTML tables
// directly.
package roster
