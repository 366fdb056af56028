package storage

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"go.mongodb.org/mongo-driver/mongo"
)

// ClassifyConnectionError provides remediation text for a failed MongoDB connection attempt.
// addr should already have its credentials masked.
func ClassifyConnectionError(err error, addr string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrMissingConnectionString) {
		return "No MongoDB connection string configured.\n" +
			"  Remediation:\n" +
			"  - Set DB_STRING in the environment or in the .env file\n" +
			"  - Example: DB_STRING=mongodb://localhost:27017/collegeportal"
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "invalid mongodb connection string") || strings.Contains(errStr, "error parsing uri") {
		return fmt.Sprintf("Malformed MongoDB connection string %s.\n"+
			"  Remediation:\n"+
			"  - The URI must start with mongodb:// or mongodb+srv://\n"+
			"  - Percent-encode special characters in the username and password", addr)
	}

	if strings.Contains(errStr, "auth error") || strings.Contains(errStr, "authentication failed") {
		return fmt.Sprintf("Authentication failed for MongoDB at %s.\n"+
			"  Remediation:\n"+
			"  - Verify the username and password in DB_STRING\n"+
			"  - Check the authSource option matches the database holding the user", addr)
	}

	var opErr *net.OpError
	if (errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED)) || strings.Contains(errStr, "connection refused") {
		return fmt.Sprintf("Connection refused by MongoDB at %s.\n"+
			"  This usually means MongoDB is not running.\n"+
			"  Remediation:\n"+
			"  - Start MongoDB: docker run -d -p 27017:27017 mongo\n"+
			"  - Verify the host and port in DB_STRING", addr)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(errStr, "no such host") {
		return fmt.Sprintf("Cannot resolve hostname in MongoDB address %s.\n"+
			"  Remediation:\n"+
			"  - Verify the hostname is correct\n"+
			"  - For mongodb+srv:// check that the SRV record exists", addr)
	}

	if mongo.IsTimeout(err) || strings.Contains(errStr, "server selection timeout") || strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Sprintf("Connection to MongoDB at %s timed out.\n"+
			"  Possible causes:\n"+
			"  - MongoDB is starting up or overloaded\n"+
			"  - A firewall or IP allow-list is blocking the connection\n"+
			"  Remediation:\n"+
			"  - Check network access from this host to the database", addr)
	}

	return fmt.Sprintf("Failed to connect to MongoDB at %s: %v\n"+
		"  Remediation:\n"+
		"  - Ensure MongoDB is running and accessible\n"+
		"  - Check DB_STRING", addr, err)
}
