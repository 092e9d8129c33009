// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package espo

// EmailPayload is the CRM's email-creation request body.
//
// This struct's JSON serialisation MUST match the EspoCRM /api/v1/Email
// schema exactly: the boolean flag set is fixed, folderId is a literal
// false (not a string), and the parent/template linkage fields are
// serialised as JSON null — this service never associates an email with a
// CRM entity or template.
type EmailPayload struct {
	Status      string `json:"status"`
	IsRead      bool   `json:"isRead"`
	IsImportant bool   `json:"isImportant"`
	InTrash     bool   `json:"inTrash"`
	FolderID    bool   `json:"folderId"`
	IsUsers     bool   `json:"isUsers"`
	IsHTML      bool   `json:"isHtml"`
	IsSystem    bool   `json:"isSystem"`
	IsJustSent  bool   `json:"isJustSent"`

	// DateSent is set only when archiving an already-sent message.
	DateSent string `json:"dateSent,omitempty"`

	To        string `json:"to"`
	Subject   string `json:"subject"`
	Name      string `json:"name"`
	Body      string `json:"body"`
	BodyPlain string `json:"bodyPlain"`
	From      string `json:"from"`
	Cc        string `json:"cc"`
	Bcc       string `json:"bcc"`

	ParentType         *string `json:"parentType"`
	ParentName         *string `json:"parentName"`
	ParentID           *string `json:"parentId"`
	SelectTemplateName *string `json:"selectTemplateName"`
	SelectTemplateID   *string `json:"selectTemplateId"`

	AttachmentsIDs []string `json:"attachmentsIds"`
}

// NewEmailPayload returns a payload with the fixed flag set applied and an
// empty (non-null) attachments list.
func NewEmailPayload() *EmailPayload {
	return &EmailPayload{
		IsRead:         true,
		AttachmentsIDs: []string{},
	}
}
