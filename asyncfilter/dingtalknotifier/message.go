package dingtalknotifier

import "encoding/json"

// DingTalk message types, used as the wire-level msgtype field value.
const (
	MsgTypeText       = "text"
	MsgTypeMarkdown   = "markdown"
	MsgTypeLink       = "link"
	MsgTypeActionCard = "actionCard"
	MsgTypeFeedCard   = "feedCard"
)

// Button orientation for AlertActionCard.
const (
	BtnOrientationHorizontal = "0" // Horizontal button layout.
	BtnOrientationVertical   = "1" // Vertical button layout.
)

// Message is the interface every job-alert payload implements, the shape
// Notifier's OnBegin/OnError/OnEnd hooks return.
type Message interface {
	GetPayload() ([]byte, error)
}

// At represents the block specifying users to mention (@) in an alert.
type At struct {
	AtMobiles []string `json:"atMobiles,omitempty"`
	IsAtAll   bool     `json:"isAtAll"`
}

// AlertText is a plain text job-alert message.
type AlertText struct {
	MsgType string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
	At At `json:"at"`
}

// NewAlertText creates an AlertText instance with the specified content.
func NewAlertText(content string) *AlertText {
	m := &AlertText{MsgType: MsgTypeText}
	m.Text.Content = content
	return m
}

func (m *AlertText) WithAtMobiles(mobiles []string) *AlertText {
	m.At.AtMobiles = mobiles
	return m
}

func (m *AlertText) WithIsAtAll(isAll bool) *AlertText {
	m.At.IsAtAll = isAll
	return m
}

func (m *AlertText) GetPayload() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMarkdown is a rich Markdown-formatted job-alert message.
type AlertMarkdown struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"markdown"`
	At At `json:"at"`
}

// NewAlertMarkdown creates an AlertMarkdown instance with the required
// title and text content.
func NewAlertMarkdown(title, text string) *AlertMarkdown {
	m := &AlertMarkdown{MsgType: MsgTypeMarkdown}
	m.Markdown.Title = title
	m.Markdown.Text = text
	return m
}

func (m *AlertMarkdown) WithAtMobiles(mobiles []string) *AlertMarkdown {
	m.At.AtMobiles = mobiles
	return m
}

func (m *AlertMarkdown) WithIsAtAll(isAll bool) *AlertMarkdown {
	m.At.IsAtAll = isAll
	return m
}

func (m *AlertMarkdown) GetPayload() ([]byte, error) {
	return json.Marshal(m)
}

// AlertLink is a simple link job-alert card, e.g. pointing at a run's
// xlsxreport dump.
type AlertLink struct {
	MsgType string `json:"msgtype"`
	Link    struct {
		Title      string `json:"title"`
		Text       string `json:"text"`
		PicURL     string `json:"picUrl,omitempty"`
		MessageURL string `json:"messageURL"`
	} `json:"link"`
}

// NewAlertLink creates an AlertLink instance with the required title,
// text, and destination URL.
func NewAlertLink(title, text, messageURL string) *AlertLink {
	m := &AlertLink{MsgType: MsgTypeLink}
	m.Link.Title = title
	m.Link.Text = text
	m.Link.MessageURL = messageURL
	return m
}

// WithPicURL sets the optional picture URL to display on the card.
func (m *AlertLink) WithPicURL(url string) *AlertLink {
	m.Link.PicURL = url
	return m
}

func (m *AlertLink) GetPayload() ([]byte, error) {
	return json.Marshal(m)
}

// AlertActionCardBtn is a clickable button within an AlertActionCard.
type AlertActionCardBtn struct {
	Title     string `json:"title"`
	ActionURL string `json:"actionURL"`
}

// AlertActionCard is a job-alert card that can carry one or multiple
// action buttons (e.g. "view log", "re-run job").
type AlertActionCard struct {
	MsgType    string `json:"msgtype"`
	ActionCard struct {
		Title          string               `json:"title"`
		Text           string               `json:"text"`
		SingleTitle    string               `json:"singleTitle,omitempty"`
		SingleURL      string               `json:"singleURL,omitempty"`
		BtnOrientation string               `json:"btnOrientation,omitempty"`
		Btns           []AlertActionCardBtn `json:"btns,omitempty"`
	} `json:"actionCard"`
}

// NewSingleAlertActionCard creates an AlertActionCard that uses a single
// action link.
func NewSingleAlertActionCard(title, text, singleTitle, singleURL string) *AlertActionCard {
	m := &AlertActionCard{MsgType: MsgTypeActionCard}
	m.ActionCard.Title = title
	m.ActionCard.Text = text
	m.ActionCard.SingleTitle = singleTitle
	m.ActionCard.SingleURL = singleURL
	return m
}

// NewMultiAlertActionCard creates an AlertActionCard that uses multiple
// buttons.
func NewMultiAlertActionCard(title, text string, btns []AlertActionCardBtn) *AlertActionCard {
	m := &AlertActionCard{MsgType: MsgTypeActionCard}
	m.ActionCard.Title = title
	m.ActionCard.Text = text
	m.ActionCard.Btns = btns
	return m
}

// WithBtnOrientation sets button orientation.
func (m *AlertActionCard) WithBtnOrientation(orientation string) *AlertActionCard {
	if orientation == BtnOrientationHorizontal || orientation == BtnOrientationVertical {
		m.ActionCard.BtnOrientation = orientation
	}
	return m
}

func (m *AlertActionCard) GetPayload() ([]byte, error) {
	return json.Marshal(m)
}

// AlertFeedLink is a single item (link) in an AlertFeedCard.
type AlertFeedLink struct {
	Title      string `json:"title"`
	MessageURL string `json:"messageURL"`
	PicURL     string `json:"picURL"`
}

// AlertFeedCard is a job-alert card that displays a list of links in a
// feed format.
type AlertFeedCard struct {
	MsgType  string `json:"msgtype"`
	FeedCard struct {
		Links []AlertFeedLink `json:"links"`
	} `json:"feedCard"`
}

// NewAlertFeedCard creates an AlertFeedCard instance with the provided
// links.
func NewAlertFeedCard(links []AlertFeedLink) *AlertFeedCard {
	m := &AlertFeedCard{MsgType: MsgTypeFeedCard}
	m.FeedCard.Links = links
	return m
}

func (m *AlertFeedCard) GetPayload() ([]byte, error) {
	return json.Marshal(m)
}
