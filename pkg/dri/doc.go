// Package dri provides the data-access layer of a digital repository:
// create/read/update/delete operations over metadata records kept in a
// document store, file intake for media attached to records, and a one-way
// publication path that pushes approved records into an external archival
// repository.
//
// It exposes a single Service interface. Record stores (memory, MongoDB,
// Postgres), blob stores for uploaded files (memory, filesystem, S3) and the
// archival client (Fedora) are provided under subpackages and wired in with
// functional options.
//
// Record Properties
//
// Record.Properties is an open bag of descriptive fields. Only the title
// (titleInfo.title or title) is read by the service itself; the converters in
// the convert subpackage map a fixed set of paths to Dublin Core and MODS and
// drop everything else.
package dri
