// Package export renders appraisal runs as fixed-width spreadsheet rows and
// appends them to a Google Sheets workbook.
package export

import (
	"fmt"

	"github.com/newelco/appraiser/pkg/listing"
)

// Tab names in the target workbook.
const (
	TabAuction = "Auction"
	TabRetail  = "Retail"
)

// comparablesPerRow is the fixed item width of an export row. Rows always
// cover exactly three comparables, padded with empty cells, so the sheet's
// columns stay aligned across appraisals.
const comparablesPerRow = 3

const timestampLayout = "2006-01-02 15:04:05"

// AuctionRow renders the run's top auction comparables as one row:
// timestamp, image formula, image URL, then per item title, link, low, high,
// reserve.
func AuctionRow(run *listing.AppraisalRun) []string {
	return buildRow(run, run.ByKind(listing.KindAuction), true)
}

// RetailRow renders the run's top retail comparables as one row: timestamp,
// image formula, image URL, then per item title, link, price.
func RetailRow(run *listing.AppraisalRun) []string {
	return buildRow(run, run.ByKind(listing.KindRetail), false)
}

func buildRow(run *listing.AppraisalRun, items []listing.Listing, auction bool) []string {
	row := []string{
		run.Timestamp.Format(timestampLayout),
		fmt.Sprintf(`=IMAGE(%q)`, run.ImageURL),
		run.ImageURL,
	}
	for i := 0; i < comparablesPerRow; i++ {
		if i < len(items) {
			l := items[i]
			row = append(row, l.Title, l.Link)
			if auction {
				row = append(row, cell(l.AuctionLow), cell(l.AuctionHigh), cell(l.AuctionReserve))
			} else {
				row = append(row, cell(l.RetailPrice))
			}
		} else {
			width := 3
			if auction {
				width = 5
			}
			for j := 0; j < width; j++ {
				row = append(row, "")
			}
		}
	}
	return row
}

func cell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
