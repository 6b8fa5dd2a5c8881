package listing

import (
	"errors"
	"reflect"
	"testing"

	"github.com/John-Robertt/BOXD/internal/domain"
)

func TestExtract_List(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want domain.ListingIdentity
	}{
		{
			name: "基本列表",
			raw:  "https://letterboxd.com/alice/list/best-films/",
			want: domain.ListingIdentity{Owner: "alice", Mode: domain.ModeList, Collection: "best-films", Filters: []string{}},
		},
		{
			name: "带筛选段",
			raw:  "https://letterboxd.com/alice/list/best-films/decade/2010s/genre/horror/",
			want: domain.ListingIdentity{Owner: "alice", Mode: domain.ModeList, Collection: "best-films", Filters: []string{"decade", "2010s", "genre", "horror"}},
		},
		{
			name: "无尾部斜杠",
			raw:  "https://letterboxd.com/bob/list/noir",
			want: domain.ListingIdentity{Owner: "bob", Mode: domain.ModeList, Collection: "noir", Filters: []string{}},
		},
		{
			name: "detail 等后缀按筛选段保留",
			raw:  "https://letterboxd.com/bob/list/noir/detail/",
			want: domain.ListingIdentity{Owner: "bob", Mode: domain.ModeList, Collection: "noir", Filters: []string{"detail"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.raw)
			if err != nil {
				t.Fatalf("不期望错误：%v", err)
			}
			if got.Filters == nil {
				got.Filters = []string{}
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("identity 不一致：got=%+v want=%+v", got, tc.want)
			}
		})
	}
}

func TestExtract_Watchlist(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want domain.ListingIdentity
	}{
		{
			name: "基本 watchlist",
			raw:  "https://letterboxd.com/bob/watchlist/",
			want: domain.ListingIdentity{Owner: "bob", Mode: domain.ModeWatchlist, Filters: []string{}},
		},
		{
			name: "带筛选段",
			raw:  "https://letterboxd.com/bob/watchlist/genre/comedy/",
			want: domain.ListingIdentity{Owner: "bob", Mode: domain.ModeWatchlist, Filters: []string{"genre", "comedy"}},
		},
		{
			name: "query 与 fragment 被丢弃",
			raw:  "https://letterboxd.com/bob/watchlist/?page=3#top",
			want: domain.ListingIdentity{Owner: "bob", Mode: domain.ModeWatchlist, Filters: []string{}},
		},
		{
			name: "host 大小写不敏感",
			raw:  "https://LETTERBOXD.COM/bob/watchlist/",
			want: domain.ListingIdentity{Owner: "bob", Mode: domain.ModeWatchlist, Filters: []string{}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.raw)
			if err != nil {
				t.Fatalf("不期望错误：%v", err)
			}
			if got.Filters == nil {
				got.Filters = []string{}
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("identity 不一致：got=%+v want=%+v", got, tc.want)
			}
			if got.Collection != "" {
				t.Fatalf("watchlist 不应有 Collection：%q", got.Collection)
			}
		})
	}
}

func TestExtract_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "空字符串", raw: ""},
		{name: "其他域名", raw: "https://example.com/alice/watchlist/"},
		{name: "www 前缀", raw: "https://www.letterboxd.com/alice/watchlist/"},
		{name: "带端口", raw: "https://letterboxd.com:443/alice/watchlist/"},
		{name: "路径过短", raw: "https://letterboxd.com/alice/"},
		{name: "既非 list 也非 watchlist", raw: "https://letterboxd.com/alice/films/"},
		{name: "list 缺列表名", raw: "https://letterboxd.com/alice/list/"},
		{name: "站点根路径", raw: "https://letterboxd.com/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.raw)
			if err == nil {
				t.Fatalf("期望错误，实际成功")
			}
			var ie *InvalidURLError
			if !errors.As(err, &ie) {
				t.Fatalf("期望 *InvalidURLError，实际 %T", err)
			}
			if ie.URL != tc.raw {
				t.Fatalf("错误应携带原始 URL：got=%q want=%q", ie.URL, tc.raw)
			}
		})
	}
}
