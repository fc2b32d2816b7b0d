// Package catalog holds the canonical Bible book catalog: the 66-book
// ordering used everywhere a spread list must be sorted, and the spread
// code format ("GEN-001") used as the stable spread identifier.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tmorren/selah/internal/entities"
)

// Book is one canonical Bible book.
type Book struct {
	Code      string // stable three-or-four character code, e.g. "GEN", "1CO"
	Name      string
	Testament entities.Testament
	Order     int // 1-66, canonical position
}

var books = []Book{
	{"GEN", "Genesis", entities.TestamentOld, 1},
	{"EXO", "Exodus", entities.TestamentOld, 2},
	{"LEV", "Leviticus", entities.TestamentOld, 3},
	{"NUM", "Numbers", entities.TestamentOld, 4},
	{"DEU", "Deuteronomy", entities.TestamentOld, 5},
	{"JOS", "Joshua", entities.TestamentOld, 6},
	{"JDG", "Judges", entities.TestamentOld, 7},
	{"RUT", "Ruth", entities.TestamentOld, 8},
	{"1SA", "1 Samuel", entities.TestamentOld, 9},
	{"2SA", "2 Samuel", entities.TestamentOld, 10},
	{"1KI", "1 Kings", entities.TestamentOld, 11},
	{"2KI", "2 Kings", entities.TestamentOld, 12},
	{"1CH", "1 Chronicles", entities.TestamentOld, 13},
	{"2CH", "2 Chronicles", entities.TestamentOld, 14},
	{"EZR", "Ezra", entities.TestamentOld, 15},
	{"NEH", "Nehemiah", entities.TestamentOld, 16},
	{"EST", "Esther", entities.TestamentOld, 17},
	{"JOB", "Job", entities.TestamentOld, 18},
	{"PSA", "Psalms", entities.TestamentOld, 19},
	{"PRO", "Proverbs", entities.TestamentOld, 20},
	{"ECC", "Ecclesiastes", entities.TestamentOld, 21},
	{"SNG", "Song of Solomon", entities.TestamentOld, 22},
	{"ISA", "Isaiah", entities.TestamentOld, 23},
	{"JER", "Jeremiah", entities.TestamentOld, 24},
	{"LAM", "Lamentations", entities.TestamentOld, 25},
	{"EZK", "Ezekiel", entities.TestamentOld, 26},
	{"DAN", "Daniel", entities.TestamentOld, 27},
	{"HOS", "Hosea", entities.TestamentOld, 28},
	{"JOL", "Joel", entities.TestamentOld, 29},
	{"AMO", "Amos", entities.TestamentOld, 30},
	{"OBA", "Obadiah", entities.TestamentOld, 31},
	{"JON", "Jonah", entities.TestamentOld, 32},
	{"MIC", "Micah", entities.TestamentOld, 33},
	{"NAM", "Nahum", entities.TestamentOld, 34},
	{"HAB", "Habakkuk", entities.TestamentOld, 35},
	{"ZEP", "Zephaniah", entities.TestamentOld, 36},
	{"HAG", "Haggai", entities.TestamentOld, 37},
	{"ZEC", "Zechariah", entities.TestamentOld, 38},
	{"MAL", "Malachi", entities.TestamentOld, 39},
	{"MAT", "Matthew", entities.TestamentNew, 40},
	{"MRK", "Mark", entities.TestamentNew, 41},
	{"LUK", "Luke", entities.TestamentNew, 42},
	{"JHN", "John", entities.TestamentNew, 43},
	{"ACT", "Acts", entities.TestamentNew, 44},
	{"ROM", "Romans", entities.TestamentNew, 45},
	{"1CO", "1 Corinthians", entities.TestamentNew, 46},
	{"2CO", "2 Corinthians", entities.TestamentNew, 47},
	{"GAL", "Galatians", entities.TestamentNew, 48},
	{"EPH", "Ephesians", entities.TestamentNew, 49},
	{"PHP", "Philippians", entities.TestamentNew, 50},
	{"COL", "Colossians", entities.TestamentNew, 51},
	{"1TH", "1 Thessalonians", entities.TestamentNew, 52},
	{"2TH", "2 Thessalonians", entities.TestamentNew, 53},
	{"1TI", "1 Timothy", entities.TestamentNew, 54},
	{"2TI", "2 Timothy", entities.TestamentNew, 55},
	{"TIT", "Titus", entities.TestamentNew, 56},
	{"PHM", "Philemon", entities.TestamentNew, 57},
	{"HEB", "Hebrews", entities.TestamentNew, 58},
	{"JAS", "James", entities.TestamentNew, 59},
	{"1PE", "1 Peter", entities.TestamentNew, 60},
	{"2PE", "2 Peter", entities.TestamentNew, 61},
	{"1JN", "1 John", entities.TestamentNew, 62},
	{"2JN", "2 John", entities.TestamentNew, 63},
	{"3JN", "3 John", entities.TestamentNew, 64},
	{"JUD", "Jude", entities.TestamentNew, 65},
	{"REV", "Revelation", entities.TestamentNew, 66},
}

var byCode = func() map[string]Book {
	m := make(map[string]Book, len(books))
	for _, b := range books {
		m[b.Code] = b
	}
	return m
}()

// Books returns the full catalog in canonical order.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// BookByCode looks up a book by its code. Codes are case-insensitive.
func BookByCode(code string) (Book, bool) {
	b, ok := byCode[strings.ToUpper(code)]
	return b, ok
}

// FormatCode builds a spread code from a book code and a sequence number
// within that book, e.g. FormatCode("GEN", 1) == "GEN-001".
func FormatCode(bookCode string, seq int) string {
	return fmt.Sprintf("%s-%03d", strings.ToUpper(bookCode), seq)
}

// ParseCode splits a spread code into its book and sequence number.
func ParseCode(code string) (Book, int, error) {
	parts := strings.SplitN(strings.ToUpper(strings.TrimSpace(code)), "-", 2)
	if len(parts) != 2 {
		return Book{}, 0, fmt.Errorf("malformed spread code %q", code)
	}
	book, ok := byCode[parts[0]]
	if !ok {
		return Book{}, 0, fmt.Errorf("unknown book code %q", parts[0])
	}
	seq, err := strconv.Atoi(parts[1])
	if err != nil || seq < 1 {
		return Book{}, 0, fmt.Errorf("invalid sequence in spread code %q", code)
	}
	return book, seq, nil
}
