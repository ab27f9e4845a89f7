/*
Copyright © 2024 - 2026 The ykprov Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// provides a custom error interface and exit codes to use on the ykprov CLI
package error

//
// Provided exit codes for ykprov
//
// To make it easy to scan them keep the structure:
//
// comment that explains the error
// const NamedConstant = ERRORCODE

// No token with the requested serial is connected
const DeviceNotFound = 10

// Probing found an inconsistent device state
const InvalidDeviceState = 11

// The utility rejected the current PIN or PUK
const CredentialRejected = 12

// A session deadline elapsed before the step finished
const ProtocolTimeout = 13

// The utility output held no recognizable result line
const UnexpectedOutput = 14

// The external utility could not be spawned
const ProcessSpawnFailed = 15

// The device is already registered and cannot be provisioned again
const DeviceAlreadyRegistered = 16

// Error running an external command
const CommandRun = 20

// Error reading the run config
const ReadingRunConfig = 21

// Invalid values in an operation spec
const InvalidSpec = 22

// Error opening a file
const OpenFile = 23

// Error creating a file
const CreateFile = 24

// Error creating a dir
const CreateDir = 25

// Error calling stat on a file
const StatFile = 26

// Error reading the identity registry file
const ReadingRegistry = 27

// Error writing the identity registry file
const WritingRegistry = 28

// Error prompting for credentials on the terminal
const CredentialPrompt = 29

// Destructive operation refused without explicit confirmation
const ConfirmationMissing = 30
