package camara

import (
	"fmt"
	"regexp"
	"strconv"
)

var pagePattern = regexp.MustCompile(`pagina=(\d+)`)

// RemainingPages derives the URLs of listing pages 2..last from the
// navigation links of the first page, so the whole listing can be
// fanned out without knowing the page count up front. Only the first
// page carries this responsibility, later pages never re-discover.
//
// A listing without a "last" link, or with one whose page parameter is
// not a positive number, is a single-page listing and yields nothing.
func RemainingPages(links []Link) []string {
	for _, link := range links {
		if link.Rel != "last" {
			continue
		}
		groups := pagePattern.FindStringSubmatch(link.Href)
		if groups == nil {
			return nil
		}
		last, err := strconv.Atoi(groups[1])
		if err != nil || last < 1 {
			return nil
		}

		var urls []string
		for page := 2; page <= last; page++ {
			urls = append(urls, pagePattern.ReplaceAllString(
				link.Href,
				fmt.Sprintf("pagina=%d", page),
			))
		}
		return urls
	}
	return nil
}
