// Package engine performs the composite branch mutations of fcmm.
//
// Every operation records the checked out branch on entry and checks it out
// again before returning, whether the operation succeeded or not. A failure
// to restore is reported together with the operation's own error.
//
// Branch names of the fcmm families are built and classified in names.go.
package engine
