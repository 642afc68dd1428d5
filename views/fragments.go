package views

// Target types stored in likes.target_type.
const (
	TargetVideo   = "video"
	TargetComment = "comment"
	TargetTweet   = "tweet"
)

// ownerColumns selects the public user fields of the user aliased as alias.
func ownerColumns(alias string) []string {
	return []string{
		alias + ".id",
		alias + ".username",
		alias + ".full_name",
		alias + ".avatar",
	}
}

// videoColumns selects the stored video fields of the video aliased as alias.
func videoColumns(alias string) []string {
	return []string{
		alias + ".id",
		alias + ".video_file",
		alias + ".thumbnail",
		alias + ".title",
		alias + ".description",
		alias + ".duration",
		alias + ".views",
		alias + ".is_published",
		alias + ".created_at",
		alias + ".updated_at",
	}
}

// likesCount counts likes of targetType whose target is idExpr.
func likesCount(targetType, idExpr string) string {
	return "(SELECT COUNT(*) FROM likes lc WHERE lc.target_type = '" + targetType + "' AND lc.target_id = " + idExpr + ")"
}

// viewerLiked is 1 when the viewer bound to the placeholder liked idExpr.
// An empty viewer id never matches.
func viewerLiked(targetType, idExpr string) string {
	return "CASE WHEN EXISTS (SELECT 1 FROM likes lv WHERE lv.target_type = '" + targetType +
		"' AND lv.target_id = " + idExpr + " AND lv.liked_by = ?) THEN 1 ELSE 0 END"
}

// subscribersCount counts subscribers of the channel idExpr.
func subscribersCount(idExpr string) string {
	return "(SELECT COUNT(*) FROM subscriptions sc WHERE sc.channel_id = " + idExpr + ")"
}

// subscribedToCount counts channels the user idExpr subscribes to.
func subscribedToCount(idExpr string) string {
	return "(SELECT COUNT(*) FROM subscriptions st WHERE st.subscriber_id = " + idExpr + ")"
}

// viewerSubscribed is 1 when the viewer bound to the placeholder subscribes
// to the channel idExpr.
func viewerSubscribed(idExpr string) string {
	return "CASE WHEN EXISTS (SELECT 1 FROM subscriptions sv WHERE sv.channel_id = " + idExpr +
		" AND sv.subscriber_id = ?) THEN 1 ELSE 0 END"
}

// visibleTo restricts videos aliased as alias to published ones plus the
// viewer's own.
func visibleTo(alias string) string {
	return "(" + alias + ".is_published = 1 OR " + alias + ".owner_id = ?)"
}
