package dispatch

// Named templates rendered against an event's payload. Subject doubles as the
// in-app notification title, body as its text.
type messageTemplate struct {
	Subject   string
	Body      string
	ActionURL string
}

// templateData is what the templates see.
type templateData struct {
	RecipientName string
	BriefTitle    string
	BriefID       int64
	ExpertName    string
}

var templates = map[string]messageTemplate{
	EventInviteSent: {
		Subject:   "You have been invited: {{.BriefTitle}}",
		Body:      "Hi {{.RecipientName}}, a client brief matches your profile. Review the invitation and respond before it expires.",
		ActionURL: "/invites",
	},
	EventInviteAccepted: {
		Subject:   "Proposal received for {{.BriefTitle}}",
		Body:      "Hi {{.RecipientName}}, {{.ExpertName}} accepted your invitation and submitted a proposal. Review it to pick your expert.",
		ActionURL: "/briefs/{{.BriefID}}/proposals",
	},
	EventInviteDeclined: {
		Subject:   "An expert declined: {{.BriefTitle}}",
		Body:      "Hi {{.RecipientName}}, {{.ExpertName}} declined the invitation for this brief. You may widen the search to invite more candidates.",
		ActionURL: "/briefs/{{.BriefID}}/matches",
	},
	EventSelectionSelected: {
		Subject:   "You were selected for {{.BriefTitle}}",
		Body:      "Congratulations {{.RecipientName}}, the client selected you for this brief. A project space has been opened for you.",
		ActionURL: "/projects",
	},
	EventSelectionNotSelected: {
		Subject:   "Update on {{.BriefTitle}}",
		Body:      "Hi {{.RecipientName}}, the client went with another expert for this brief. Thanks for responding; more matching briefs are on the way.",
		ActionURL: "/invites",
	},
}
