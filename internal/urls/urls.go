package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the documentation site at https://okvist.github.io/printlink/

// GettingStarted is the quick start guide for linking a first printer.
const GettingStarted = "https://okvist.github.io/printlink/getting-started/overview/"

// FindingYourAPIKey explains where the API key lives on each supported
// printer model (LCD menu, web interface, settings screen).
const FindingYourAPIKey = "https://okvist.github.io/printlink/getting-started/api-key/"

// DigestCredentials covers setting a username and password on the
// printer and what to do when the printer rejects them.
const DigestCredentials = "https://okvist.github.io/printlink/getting-started/credentials/"

// FirmwareSupport lists the printer firmware versions that expose a
// compatible API and how to update older firmware.
const FirmwareSupport = "https://okvist.github.io/printlink/reference/firmware-support/"

// TroubleshootingGuide provides solutions to common issues encountered
// when the wizard cannot reach or authenticate with a printer.
const TroubleshootingGuide = "https://okvist.github.io/printlink/troubleshooting/"
