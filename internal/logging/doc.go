// Package logging builds the process logger and keeps log attribute names
// consistent across packages.
//
// Client email addresses never appear in operational logs; use UserHash or
// Domain instead:
//
//	logger.Info("appointment created",
//	    logging.EventID(ev.ID),
//	    logging.UserHash(req.ClientEmail))
package logging
