// Package filter builds and combines MongoDB-style filter trees.
//
// A filter tree is a bson.M whose ordinary keys are field constraints and
// whose $and / $or keys hold arrays of sub-trees. Range turns a sort and the
// last seen sort values into a "strictly after" constraint; Merge joins two
// trees without dropping or overwriting any constraint.
package filter
