package hosterr

import "github.com/de-tools/ledger-sync/pkg/models/domain"

// Remedies returns the remediation list for kind. Every kind has at least one.
func Remedies(kind domain.ErrorKind) []string {
	switch kind {
	case domain.ErrorKindSdkNotInstalled:
		return []string{
			"Install the accounting SDK request processor on this machine.",
			"Confirm the accounting application is installed for the current user.",
		}
	case domain.ErrorKindSdkNotRegistered:
		return []string{
			"Confirm the SDK component is registered (re-run the SDK installer or register QBXMLRP2).",
			"Run with elevated privileges if registration requires administrator rights.",
			"Use a 32-bit build if only the 32-bit SDK component is registered.",
		}
	case domain.ErrorKindAccessDenied:
		return []string{
			"Open the company file as an administrator and authorize this application under Integrated Applications.",
			"Run with elevated privileges.",
		}
	case domain.ErrorKindFileNotFound:
		return []string{
			"Open the company file in the accounting application before running.",
			"Verify the configured company file path exists and is readable.",
		}
	case domain.ErrorKindConnectionFailed:
		return []string{
			"Verify the host application is running.",
			"Close modal dialogs in the accounting application and retry.",
			"Make sure no other application holds the company file in single-user mode.",
		}
	case domain.ErrorKindProtocolRejected:
		return []string{
			"Update the accounting application to a release that supports the requested protocol version.",
			"Check the request log for the rejected payload.",
		}
	case domain.ErrorKindParseFailed:
		return []string{
			"Retry on the next cycle; the response was incomplete or invalid.",
			"Check the request log for the raw response.",
		}
	case domain.ErrorKindInvalidDateRange:
		return []string{
			"Use a date range whose start is on or before its end (YYYY-MM-DD).",
		}
	default:
		return []string{
			"Check the application log for details and retry.",
		}
	}
}
