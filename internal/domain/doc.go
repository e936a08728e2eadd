// Package domain models road-collision records and their aggregation into a
// city-by-hour heatmap matrix.
//
// # Data Source
//
// Collision rows come from a transformed export of the UK road-safety
// collision dataset (one CSV row per collision). Only a handful of columns are
// read:
//
//	local_authority_highway  highway authority name, used as the "city"
//	time                     local time of the collision, "HH:MM"
//	collision_severity       severity label (Fatal, Serious, Slight)
//	number_of_casualties     integer
//	number_of_vehicles       integer
//	longitude, latitude      WGS-84 decimal degrees
//
// Severity, casualty/vehicle counts and coordinates are carried on
// [CollisionRecord] but not consumed by [Aggregate].
//
// # Hour Derivation
//
// The hour is the integer before the first ':' of the time column, so "7:05"
// and "07:05" both give 7. There is no 0-23 bounds check. A value that does
// not parse yields [InvalidHour], which can never be a member of a peak-hour
// set, so such rows drop out of the matrix without raising an error.
//
// # Peak Hours
//
// The default peak-hour set is the explicit list {7, 8, 9, 17, 18, 19}. The
// chart title describes this as "7-9 AM & 5-7 PM"; the list is kept literal
// rather than derived from those ranges so the two cannot drift apart.
//
// # Matrix Layout
//
// A [Matrix] always has len(Cities)*len(Hours) cells, ordered city-major,
// hour-minor, following the order of the [FilterSet]. Pairs with no retained
// rows are explicit zeros.
package domain
