package constants

import "time"

var CacheTTL = struct {
	Revalidate time.Duration
	CMSRequest time.Duration
}{
	Revalidate: 24 * time.Hour,   // 24시간 - CMS 콘텐츠 재검증 주기
	CMSRequest: 10 * time.Second, // microCMS 요청 타임아웃
}

var CMSEndpoints = struct {
	News    string
	Talents string
}{
	News:    "news",
	Talents: "talents",
}

var ListLimits = struct {
	Max      int
	HomeNews int
	Roster   int
}{
	Max:      100,
	HomeNews: 3,
	Roster:   100,
}

// NoImagePath is served from PUBLIC_DIR when a person has no images.
const NoImagePath = "/no-image.png"

// ImageQuery is appended to CMS image URLs to request a bounded rendition.
const ImageQuery = "?fit=max&h=1000"

var Toast = struct {
	AutoClose time.Duration
	Sending   string
	Sent      string
	Failed    string
}{
	AutoClose: 5 * time.Second,
	Sending:   "送信しています…",
	Sent:      "メッセージを送信しました",
	Failed:    "送信に失敗しました",
}

var Mail = struct {
	SubjectPrefix string
	Timeout       time.Duration
}{
	SubjectPrefix: "【Higa Production 公式サイト】",
	Timeout:       30 * time.Second,
}

var Site = struct {
	Name        string
	Title       string
	Description string
	LogoPath    string
}{
	Name:        "Higa Production",
	Title:       "Higa Production（ヒガプロダクション）公式サイト",
	Description: "Vライバー配信アプリIRIAM（イリアム）の事務所「Higa Production（ヒガプロダクション）」の公式サイトです。",
	LogoPath:    "/logo.png",
}

var HeaderSession = struct {
	SweepInterval time.Duration
	WriteTimeout  time.Duration
	PongWait      time.Duration
}{
	SweepInterval: 1 * time.Minute,
	WriteTimeout:  10 * time.Second,
	PongWait:      60 * time.Second,
}
