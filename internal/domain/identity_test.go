package domain

import (
	"net/url"
	"testing"
)

func TestListingIdentity_FirstPageURL(t *testing.T) {
	cases := []struct {
		name string
		id   ListingIdentity
		want string
	}{
		{
			name: "list 无过滤段",
			id:   ListingIdentity{Owner: "alice", Mode: ModeList, Collection: "best-of-2020"},
			want: "https://letterboxd.com/alice/list/best-of-2020/detail/",
		},
		{
			name: "list 带过滤段",
			id:   ListingIdentity{Owner: "alice", Mode: ModeList, Collection: "noir", Filters: []string{"decade", "1940s"}},
			want: "https://letterboxd.com/alice/list/noir/detail/decade/1940s/",
		},
		{
			name: "watchlist 无过滤段",
			id:   ListingIdentity{Owner: "bob", Mode: ModeWatchlist},
			want: "https://letterboxd.com/bob/watchlist/",
		},
		{
			name: "watchlist 带过滤段",
			id:   ListingIdentity{Owner: "bob", Mode: ModeWatchlist, Filters: []string{"genre", "horror"}},
			want: "https://letterboxd.com/bob/watchlist/genre/horror/",
		},
	}

	for _, c := range cases {
		got := c.id.FirstPageURL()
		if got != c.want {
			t.Fatalf("%s：期望 %q，实际 %q", c.name, c.want, got)
		}

		// 首页地址本身必须是同站点的合法 URL。
		u, err := url.Parse(got)
		if err != nil {
			t.Fatalf("%s：首页地址不是合法 URL：%v", c.name, err)
		}
		if u.Host != SiteHost {
			t.Fatalf("%s：期望 host=%s，实际 %q", c.name, SiteHost, u.Host)
		}
	}
}

func TestListingIdentity_PageURL(t *testing.T) {
	id := ListingIdentity{Owner: "alice", Mode: ModeWatchlist}

	if got := id.PageURL(1); got != "https://letterboxd.com/alice/watchlist/" {
		t.Fatalf("第 1 页应为首页地址，实际 %q", got)
	}
	if got := id.PageURL(3); got != "https://letterboxd.com/alice/watchlist/page/3/" {
		t.Fatalf("第 3 页地址不正确：%q", got)
	}
}

func TestListingIdentity_OutputName(t *testing.T) {
	cases := []struct {
		id   ListingIdentity
		want string
	}{
		{ListingIdentity{Owner: "alice", Mode: ModeList, Collection: "noir"}, "alice_noir"},
		{ListingIdentity{Owner: "alice", Mode: ModeList, Collection: "noir", Filters: []string{"decade", "1940s"}}, "alice_noir_decade_1940s"},
		{ListingIdentity{Owner: "bob", Mode: ModeWatchlist}, "bob_watchlist"},
		{ListingIdentity{Owner: "bob", Mode: ModeWatchlist, Filters: []string{"genre", "horror"}}, "bob_watchlist_genre_horror"},
	}

	for _, c := range cases {
		if got := c.id.OutputName(); got != c.want {
			t.Fatalf("期望 %q，实际 %q", c.want, got)
		}
	}
}
