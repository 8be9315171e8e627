// Package qbxmlrp talks to the accounting host through its COM request
// processor (QBXMLRP2.RequestProcessor). Only Windows hosts provide it;
// elsewhere Connect reports the SDK as not installed.
package qbxmlrp
