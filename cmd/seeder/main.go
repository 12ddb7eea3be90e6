package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/poiesic/reviewvec/csvio"
)

var phrases = []string{
	"Search across all our documents is fast and accurate.",
	"The onboarding flow took less than a day for the whole team.",
	"Pricing gets expensive once you add more than ten seats.",
	"The mobile app crashes when uploading large attachments.",
	"Support answered every ticket within a few hours.",
	"Reporting dashboards are hard to customize.",
	"Integrations with our CRM worked out of the box.",
	"We needed a single place to track customer feedback.",
	"Notifications are noisy and cannot be grouped.",
	"Exporting data to CSV is limited to a thousand rows.",
	"The API documentation is clear and has good examples.",
	"Permissions are too coarse for larger organizations.",
	"It replaced three separate tools we were paying for.",
	"Start with the free tier and grow into the paid plan.",
	"Set aside time to configure the workflows properly.",
	"Ask for the annual discount before signing.",
	"Our sales team wanted better pipeline visibility.",
	"Manual data entry was wasting hours every week.",
	"Loading times on large projects are noticeably slow.",
	"The keyboard shortcuts make daily use much quicker.",
}

var (
	names     = []string{"Alex P.", "Jordan K.", "Sam R.", "Taylor M.", "Casey L.", "Morgan D.", ""}
	jobTitles = []string{"Product Manager", "Software Engineer", "Head of Sales", "Operations Lead", "CTO", ""}
	sizes     = []string{"Small-Business (50 or fewer emp.)", "Mid-Market (51-1000 emp.)", "Enterprise (> 1000 emp.)", ""}
	titles    = []string{"Solid tool for growing teams", "Does the job", "Great support, rough edges", "Worth the price", ""}
)

var (
	rowCount       = flag.Int("rows", 250, "number of reviews to generate")
	outFileName    = flag.String("out", "reviews.csv", "output CSV path")
	seedFileName   = flag.String("src", "", "file of phrases, one per line")
	randomSeed     = flag.Uint64("seed", 1, "random seed")
	linklessEveryN = flag.Int("linkless-every", 25, "leave the review link empty on every Nth row (0 disables)")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

func pick(r *rand.Rand, from []string) string {
	return from[r.IntN(len(from))]
}

// review builds one row in csvio.ReviewHeaders order.
func review(r *rand.Rand, row int, pool []string) []string {
	rating := ""
	if r.IntN(10) > 0 {
		rating = strconv.FormatFloat(float64(1+r.IntN(9))/2+0.5, 'f', 1, 64)
	}
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, r.IntN(365)).Format("2006-01-02")
	link := fmt.Sprintf("https://reviews.example.com/products/reviewvec/%d", row)
	if *linklessEveryN > 0 && row%*linklessEveryN == *linklessEveryN-1 {
		link = ""
	}
	return []string{
		pick(r, names),
		pick(r, jobTitles),
		pick(r, sizes),
		rating,
		date,
		pick(r, titles),
		pick(r, pool),
		pick(r, pool),
		pick(r, pool),
		pick(r, pool),
		link,
	}
}

func main() {
	pool := phrases
	if *seedFileName != "" {
		source, err := linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
		pool = slices.Collect(source)
		if len(pool) == 0 {
			panic("seed file has no lines")
		}
	}

	f, err := os.Create(*outFileName)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	r := rand.New(rand.NewPCG(*randomSeed, *randomSeed))
	w := csv.NewWriter(f)
	if err := w.Write(csvio.ReviewHeaders); err != nil {
		panic(err)
	}
	for row := 0; row < *rowCount; row++ {
		if err := w.Write(review(r, row, pool)); err != nil {
			panic(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		panic(err)
	}

	slog.Info("wrote synthetic reviews", "path", *outFileName, "rows", *rowCount)
}
