package redis

// ParseSearchReply exposes parseSearchReply to the external test package.
var ParseSearchReply = parseSearchReply
