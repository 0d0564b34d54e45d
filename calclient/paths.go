package calclient

// appRoot is the stable, lower-case application root inside the per-user
// namespace. The casing is part of the on-disk layout; do not change it.
const appRoot = "/pub/calky"

func indexPath() string {
	return appRoot + "/index.json"
}

func collectionPath(calendarID string) string {
	return appRoot + "/cal/" + calendarID + "/"
}

func propsPath(calendarID string) string {
	return appRoot + "/cal/" + calendarID + "/props.json"
}

func documentPath(calendarID string) string {
	return appRoot + "/cal/" + calendarID + "/calendar.ics"
}

func etagPath(calendarID string) string {
	return appRoot + "/cal/" + calendarID + "/etag.txt"
}
