package common

import (
	"fmt"
	"strings"
	"time"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/state"

	"github.com/shopspring/decimal"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

const timeLayout = "2006-01-02 15:04"

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// MaskToken keeps the first and last four characters of a credential.
func MaskToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= 12:
		return strings.Repeat("*", len(token))
	default:
		return token[:4] + "…" + token[len(token)-4:]
	}
}

// FormatAmount renders a rupee amount with two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return "₹" + amount.StringFixed(2)
}

// SignedAmount prefixes payins with "+" and payouts with "-".
func SignedAmount(tx models.Transaction) string {
	if tx.Type == models.TypePayout {
		return "-" + FormatAmount(tx.Amount)
	}
	return "+" + FormatAmount(tx.Amount)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// TransactionLine is the one-line summary used in history listings.
func TransactionLine(tx models.Transaction) string {
	return fmt.Sprintf("%-16s %-11s %-10s %12s  %s",
		formatTime(tx.CreatedAt), tx.TransactionType, tx.Status, SignedAmount(tx), tx.Id)
}

func PrintTransactions(history []models.Transaction) {
	if len(history) == 0 {
		fmt.Println("No transactions found")
		return
	}
	for i, tx := range history {
		fmt.Println(BoxPrefix(i == len(history)-1) + TransactionLine(tx))
	}
}

func PrintWallet(w state.WalletState, filtered []models.Transaction) {
	PrintHeader("WALLET", DefaultWidth)
	fmt.Printf("Balance:  %s\n", FormatAmount(w.Balance))
	fmt.Printf("Page:     %d of %d (%d transactions)\n", w.Pagination.Page, w.Pagination.Pages, w.Pagination.Total)
	f := w.Filters
	if f != models.DefaultFilters() {
		fmt.Printf("Filters:  type=%s transactionType=%s status=%s\n", f.Type, f.TransactionType, f.Status)
	}
	PrintBoxSeparator(DefaultWidth - 1)
	PrintTransactions(filtered)
	PrintSeparator("=", DefaultWidth)
}

func PrintProfile(p *models.ProfileDetail) {
	if p == nil {
		fmt.Println("No profile loaded")
		return
	}
	PrintHeader("@"+p.Username, DefaultWidth)
	fmt.Printf("Name:      %s\n", p.Name)
	printOptional("Bio:       %s\n", p.Bio)
	printOptional("Location:  %s\n", p.Location)
	printOptional("Gender:    %s\n", p.Gender)
	printOptional("Language:  %s\n", p.VideoLanguage)
	if !p.CreatedAt.IsZero() {
		fmt.Printf("Joined:    %s\n", p.CreatedAt.Local().Format("2006-01-02"))
	}
	PrintSeparator("=", DefaultWidth)
}

func printOptional(format, value string) {
	if value != "" {
		fmt.Printf(format, value)
	}
}

func PrintCommunityList(title string, communities []models.Community) {
	fmt.Printf("%s (%d)\n", title, len(communities))
	for i, c := range communities {
		last := i == len(communities)-1
		fmt.Printf("%s%s  [%s]\n", BoxPrefix(last), c.Name, c.Id)
		fmt.Printf("%s   followers=%d creators=%d cost=%s\n",
			BoxDetailPrefix(last), c.FollowersCount, c.CreatorsCount, FormatAmount(c.Cost))
	}
}

func PrintUserCommunities(uc state.UserCommunities) {
	PrintHeader("MY COMMUNITIES", DefaultWidth)
	fmt.Printf("Founded: %d  Creator: %d  Following: %d\n",
		uc.Statistics.FoundedCount, uc.Statistics.CreatorCount, uc.Statistics.FollowingCount)
	PrintBoxSeparator(DefaultWidth - 1)
	PrintCommunityList("Founded", uc.Founded)
	PrintCommunityList("Creator", uc.Creator)
	PrintCommunityList("Following", uc.Following)
	PrintSeparator("=", DefaultWidth)
}

func PrintCommunity(c *models.Community) {
	if c == nil {
		fmt.Println("No community loaded")
		return
	}
	PrintHeader(c.Name, DefaultWidth)
	printOptional("Bio:        %s\n", c.Bio)
	if c.Founder != nil {
		fmt.Printf("Founder:    @%s\n", c.Founder.Username)
	}
	fmt.Printf("Cost:       %s\n", FormatAmount(c.Cost))
	fmt.Printf("Followers:  %d\n", c.FollowersCount)
	fmt.Printf("Creators:   %d\n", c.CreatorsCount)
	fmt.Printf("Following:  %t\n", c.IsFollowing)
	fmt.Printf("Creator:    %t\n", c.IsCreator)
	PrintSeparator("=", DefaultWidth)
}
