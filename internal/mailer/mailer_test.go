package mailer

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/myk4040okothogodo/movienft/internal/chain"
	"github.com/myk4040okothogodo/movienft/internal/data"
)

func TestRenderMovieMinted(t *testing.T) {
	movie := &data.Movie{
		TokenID: 7,
		Name:    "Casablanca",
		Year:    1942,
		Genre:   "drama",
		Poster:  "https://example.com/casablanca.jpg",
		Shares:  100,
		Price:   data.NewWei(big.NewInt(1000)),
	}
	receipt := &chain.Receipt{TxHash: common.HexToHash("0xabc"), BlockNumber: 12, TokenID: 7}

	subject, plain, html, err := render("movie_minted.tmpl", map[string]interface{}{
		"Movie":   movie,
		"Receipt": receipt,
	})
	if err != nil {
		t.Fatal(err)
	}

	if subject != `Minted "Casablanca" as token #7` {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(plain, "Base price: 1000 wei") || !strings.Contains(plain, "block 12") {
		t.Fatalf("unexpected plain body %q", plain)
	}
	if !strings.Contains(html, `src="https://example.com/casablanca.jpg"`) {
		t.Fatalf("unexpected html body %q", html)
	}
}

func TestRenderSharesPurchased(t *testing.T) {
	receipt := &chain.Receipt{TokenID: 3, BlockNumber: 4, Value: data.NewWei(big.NewInt(150))}

	subject, plain, _, err := render("shares_purchased.tmpl", map[string]interface{}{
		"Amount":  3,
		"Receipt": receipt,
	})
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Bought 3 shares of token #3" || !strings.Contains(plain, "for 150 wei") {
		t.Fatalf("unexpected output %q / %q", subject, plain)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := render("missing.tmpl", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}
